// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/styles"
)

// Item represents a single menu option. Selecting it either switches view,
// sends Msg, or quits.
type Item struct {
	Label string
	View  messages.ViewType
	Msg   tea.Msg
	Quit  bool
}

// Items returns the menu entries. Entries for unwired ports are left out.
func Items(documents, sync, session bool) []Item {
	items := []Item{{Label: "Search", View: messages.ViewSearch}}
	if documents {
		items = append(items, Item{Label: "Documents", View: messages.ViewDocuments})
	}
	if sync {
		items = append(items, Item{Label: "Resync roots", Msg: messages.SyncRequested{}})
	}
	if session {
		items = append(items, Item{Label: "Share session", View: messages.ViewSession})
	}
	return append(items,
		Item{Label: "Help", View: messages.ViewHelp},
		Item{Label: "Quit", Quit: true},
	)
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	status   string
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles, items []Item) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if len(items) == 0 {
		items = Items(false, false, false)
	}

	return &View{
		styles: s,
		items:  items,
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
		case "enter":
			return v, v.activate(v.items[v.selected])
		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

func (v *View) activate(item Item) tea.Cmd {
	switch {
	case item.Quit:
		return tea.Quit
	case item.Msg != nil:
		m := item.Msg
		return func() tea.Msg { return m }
	default:
		return func() tea.Msg {
			return messages.ViewChanged{View: item.View}
		}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docmirror"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Mirror and search a directory of documents"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(item.Label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(item.Label))
		}
		b.WriteString("\n")
	}

	if v.status != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetStatus sets the line shown under the menu items.
func (v *View) SetStatus(status string) {
	v.status = status
}

// Status returns the line shown under the menu items.
func (v *View) Status() string {
	return v.status
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Labels returns the labels of the menu entries in order.
func (v *View) Labels() []string {
	labels := make([]string, len(v.items))
	for i, item := range v.items {
		labels[i] = item.Label
	}
	return labels
}
