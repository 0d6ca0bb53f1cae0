// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// placeholders hints at what each mode matches.
var placeholders = map[domain.SearchMode]string{
	domain.SearchModeKeyword:  "Words in the documents...",
	domain.SearchModeContext:  "Describe what you are looking for...",
	domain.SearchModeFilename: "Part of a file name...",
}

// SearchInput wraps a bubbles textinput with a mode badge.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	mode      domain.SearchMode
	width     int
}

// NewSearchInput creates a new search input component.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	in := &SearchInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
	in.SetMode(domain.SearchModeKeyword)
	return in
}

// Init initialises the search input.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the badge and the input.
func (s *SearchInput) View() string {
	badge := s.styles.ModeBadge(s.mode)
	field := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, badge, " ", field)
}

// SetMode changes the badge and placeholder.
func (s *SearchInput) SetMode(mode domain.SearchMode) {
	s.mode = mode
	s.textinput.Placeholder = placeholders[mode]
}

// Mode returns the mode shown in the badge.
func (s *SearchInput) Mode() domain.SearchMode {
	return s.mode
}

// Value returns the current input value.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input, leaving room for the badge.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	s.textinput.Width = max(width-20, 20)
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
}
