package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/views/docdetails"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/views/session"
	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView       *menu.View
	searchView     *search.View
	documentsView  *documents.View
	docContentView *doccontent.View
	docDetailsView *docdetails.View
	sessionView    *session.View

	currentView messages.ViewType
	syncing     bool

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: s,
		menuView: menu.NewView(s, menu.Items(
			ports.Document != nil, ports.Sync != nil, ports.Session != nil,
		)),
		searchView: search.NewView(s, nil, search.Services{
			Search:   ports.Search,
			Actions:  ports.ResultAction,
			Document: ports.Document,
		}, ports.DefaultMode),
		documentsView:  documents.NewView(s, ports.Document, ports.ResultAction),
		docContentView: doccontent.NewView(s),
		docDetailsView: docdetails.NewView(s, ports.ResultAction),
		sessionView:    session.NewView(s, ports.Session),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context services are called with.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.docDetailsView.WithContext(ctx)
	a.sessionView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("docmirror"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.SearchCompleted:
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.DocumentsLoaded:
		var cmd tea.Cmd
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentSelected:
		a.docContentView.SetDocument(msg.Details)
		a.currentView = messages.ViewDocContent
		return a, nil

	case messages.DocumentDetailsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, a.forward(messages.ErrorOccurred{Err: msg.Err})
		}
		a.docDetailsView.SetDetails(msg.Details, a.currentView)
		a.currentView = messages.ViewDocDetails
		return a, nil

	case messages.SyncRequested:
		return a, a.resync()

	case messages.SyncCompleted:
		a.syncing = false
		if msg.Err != nil {
			a.err = msg.Err
			a.menuView.SetStatus("Resync failed: " + msg.Err.Error())
		} else {
			a.menuView.SetStatus(fmt.Sprintf("Resynchronised %d roots.", msg.Roots))
		}
		return a, nil

	case messages.SessionIssued, messages.SessionRevoked:
		var cmd tea.Cmd
		a.sessionView, cmd = a.sessionView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewDocDetails:
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
	case messages.ViewSession:
		a.sessionView, cmd = a.sessionView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// switchTo activates view, running its initialisation.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	from := a.currentView
	a.currentView = view
	switch view {
	case messages.ViewSearch:
		// Coming back from a result's details keeps the results.
		if from != messages.ViewDocDetails {
			a.searchView.Reset()
		}
		return a.searchView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Init()
	case messages.ViewSession:
		return a.sessionView.Init()
	case messages.ViewMenu, messages.ViewHelp, messages.ViewDocContent, messages.ViewDocDetails:
	}
	return nil
}

// resync runs one pass over every remembered root.
func (a *App) resync() tea.Cmd {
	if a.ports.Sync == nil || a.syncing {
		return nil
	}
	a.syncing = true
	a.menuView.SetStatus("Resynchronising...")
	ctx, svc := a.ctx, a.ports.Sync
	return func() tea.Msg {
		n, err := svc.SyncAll(ctx)
		return messages.SyncCompleted{Roots: n, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewDocDetails:
		return a.docDetailsView.View()
	case messages.ViewSession:
		return a.sessionView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Search:
  (type)      Enter a query
  tab         Cycle keyword / context / filename
  enter       Submit search

Results:
  j/k, ↑/↓    Navigate results
  p           Toggle snippet preview
  n, /        New search
  enter       Open, copy path, or show details

Documents:
  enter       Show content or details, open source
  r           Reload

Share session:
  n           Issue a new token
  r           Revoke the token

[esc] back to menu`
}

// Query returns the current search query.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult {
	return a.searchView.Results()
}

// SelectedIndex returns the currently selected result index.
func (a *App) SelectedIndex() int {
	return a.searchView.SelectedIndex()
}

// Mode returns the active search mode.
func (a *App) Mode() domain.SearchMode {
	return a.searchView.Mode()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
	a.docDetailsView.SetDimensions(width, height)
	a.sessionView.SetDimensions(width, height)
}
