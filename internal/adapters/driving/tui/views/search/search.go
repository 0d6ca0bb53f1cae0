// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// Result actions offered by the action menu.
const (
	ActionOpen    = "Open document"
	ActionCopy    = "Copy path"
	ActionDetails = "Show details"
	ActionCancel  = "Cancel"
)

// previewHeight is the number of rows given to the snippet pane.
const previewHeight = 6

// ActionMenu is the action selection overlay for one result.
type ActionMenu struct {
	actions  []string
	selected int
	result   domain.SearchResult
}

// Services are the ports the search view calls.
type Services struct {
	Search   driving.SearchService
	Actions  driving.ResultActionService
	Document driving.DocumentService
}

// View is the search view: mode badge and input, results, snippet preview
// and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	services Services
	ctx      context.Context

	mode        domain.SearchMode
	width       int
	height      int
	ready       bool
	err         error
	focusInput  bool
	showPreview bool
	actionMenu  *ActionMenu
}

// NewView creates a new search view starting in mode.
func NewView(s *styles.Styles, km *keymap.KeyMap, svc Services, mode domain.SearchMode) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if !mode.IsValid() {
		mode = domain.SearchModeKeyword
	}

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewSearchInput(s),
		list:        list.NewResultList(s),
		statusbar:   status.NewBar(s, km),
		services:    svc,
		ctx:         context.Background(),
		width:       80,
		height:      24,
		focusInput:  true,
		showPreview: true,
	}
	v.setMode(mode)
	return v
}

// WithContext sets the context searches and actions run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.StatusMessage:
		v.statusbar.SetMessage(msg.Text)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.actionMenu != nil {
		return v.handleActionMenuKey(msg)
	}

	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.CycleMode):
		v.setMode(nextMode(v.mode))
		// Re-run the last query so the results match the badge.
		if !v.focusInput && v.input.Value() != "" {
			return v, v.submit()
		}
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			if strings.TrimSpace(v.input.Value()) == "" {
				return v, nil
			}
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case msg.Type == tea.KeyEnter:
		if result := v.list.SelectedResult(); result != nil {
			v.actionMenu = &ActionMenu{
				actions: v.availableActions(),
				result:  *result,
			}
		}
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Preview):
		v.showPreview = !v.showPreview
		v.layout()
		return v, nil
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// availableActions lists the actions whose ports are wired.
func (v *View) availableActions() []string {
	actions := make([]string, 0, 4)
	if v.services.Actions != nil {
		actions = append(actions, ActionOpen, ActionCopy)
	}
	if v.services.Document != nil {
		actions = append(actions, ActionDetails)
	}
	return append(actions, ActionCancel)
}

func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	m := v.actionMenu
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.actions)-1 {
			m.selected++
		}
	case "enter":
		v.actionMenu = nil
		return v, v.executeAction(m.actions[m.selected], m.result)
	case "esc":
		v.actionMenu = nil
	}
	return v, nil
}

// executeAction returns a command running action against result.
func (v *View) executeAction(action string, result domain.SearchResult) tea.Cmd {
	ctx := v.ctx
	switch action {
	case ActionOpen:
		return func() tea.Msg {
			if err := v.services.Actions.OpenDocument(ctx, &result); err != nil {
				return messages.StatusMessage{Text: "Open: " + err.Error()}
			}
			return messages.StatusMessage{Text: "Opened " + result.Path}
		}
	case ActionCopy:
		return func() tea.Msg {
			if err := v.services.Actions.CopyToClipboard(ctx, &result); err != nil {
				return messages.StatusMessage{Text: "Copy: " + err.Error()}
			}
			return messages.StatusMessage{Text: "Copied path to clipboard"}
		}
	case ActionDetails:
		return func() tea.Msg {
			details, err := v.services.Document.Resolve(ctx, result.Hash)
			return messages.DocumentDetailsLoaded{Ref: result.Hash, Details: details, Err: err}
		}
	}
	return nil
}

// submit starts a search for the input in the current mode.
func (v *View) submit() tea.Cmd {
	q := domain.SearchQuery{Query: strings.TrimSpace(v.input.Value()), Mode: v.mode}
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("")
	v.focusInput = false
	v.input.Blur()

	ctx := v.ctx
	svc := v.services.Search
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := svc.Search(ctx, q)
		return messages.SearchCompleted{Query: q, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		v.list.SetResults(nil)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) setMode(mode domain.SearchMode) {
	v.mode = mode
	v.input.SetMode(mode)
	v.statusbar.SetMode(mode)
}

// nextMode cycles keyword, context, filename.
func nextMode(mode domain.SearchMode) domain.SearchMode {
	modes := domain.AllSearchModes()
	i := slices.Index(modes, mode)
	return modes[(i+1)%len(modes)]
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("docmirror"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.actionMenu != nil {
		sections = append(sections, "", v.renderActionMenu())
	} else if v.showPreview && !v.focusInput {
		if preview := v.renderPreview(); preview != "" {
			sections = append(sections, "", preview)
		}
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPreview shows the snippet and modification time of the selection.
func (v *View) renderPreview() string {
	result := v.list.SelectedResult()
	if result == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(v.styles.Path.Render(result.Path))
	if !result.ModTime.IsZero() {
		b.WriteString(v.styles.Muted.Render("  modified " + result.ModTime.Local().Format(time.DateTime)))
	}
	b.WriteString("\n")
	snippet := result.Snippet
	if snippet == "" {
		snippet = "(no preview)"
	}
	b.WriteString(v.styles.Normal.Render(snippet))

	return v.styles.Preview.
		Width(max(v.width-4, 20)).
		MaxHeight(previewHeight).
		Render(b.String())
}

func (v *View) renderActionMenu() string {
	lines := make([]string, 0, len(v.actionMenu.actions)+2)
	lines = append(lines, v.styles.Subtitle.Render(v.actionMenu.result.Path), "")
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+action))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+action))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
}

// layout splits the height between the list and the preview pane.
func (v *View) layout() {
	v.input.SetWidth(v.width)
	v.statusbar.SetWidth(v.width)
	listHeight := v.height - 8
	if v.showPreview {
		listHeight -= previewHeight + 1
	}
	v.list.SetDimensions(v.width, max(listHeight, 3))
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Mode returns the current search mode.
func (v *View) Mode() domain.SearchMode {
	return v.mode
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusMessage returns the notice shown in the status bar.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// ActionMenuVisible reports whether the action menu is open.
func (v *View) ActionMenuVisible() bool {
	return v.actionMenu != nil
}

// PreviewVisible reports whether the snippet pane is enabled.
func (v *View) PreviewVisible() bool {
	return v.showPreview
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.Clear()
}

// Reset returns the view to input mode with no results. The mode is kept.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.actionMenu = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
