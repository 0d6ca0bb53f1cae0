package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

type fixture struct {
	app      *App
	search   *mockSearchService
	sync     *mockSynchronizer
	document *mockDocumentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		search: &mockSearchService{results: []domain.SearchResult{
			{Hash: "aaaa1111", Path: "notes/a.txt", Title: "Budget", Score: 0.9, Snippet: "budget approved"},
		}},
		sync: &mockSynchronizer{roots: 2},
		document: &mockDocumentService{docs: []driving.DocumentDetails{{
			Document: &domain.NormalizedDocument{Hash: "aaaa1111", Title: "Budget", Text: "budget approved"},
			Paths:    []string{"notes/a.txt"},
		}}},
	}
	app, err := NewApp(&Ports{
		Search:      f.search,
		Sync:        f.sync,
		Document:    f.document,
		Session:     mockSessionService{},
		DefaultMode: domain.SearchModeFilename,
	})
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	f.app = app
	return f
}

// send delivers msg and then every message its commands produce.
func (f *fixture) send(msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		_, cmd := f.app.Update(m)
		queue = append(queue, drain(cmd)...)
	}
}

// drain runs cmd, skipping cursor blinks and expanding batches.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch m := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, drain(c)...)
		}
		return out
	case messages.ViewChanged, messages.SearchCompleted, messages.DocumentsLoaded,
		messages.DocumentSelected, messages.DocumentDetailsLoaded, messages.SyncRequested,
		messages.SyncCompleted, messages.SessionIssued, messages.StatusMessage, messages.ErrorOccurred:
		return []tea.Msg{m}
	default:
		return nil
	}
}

// typeText delivers runes without running the cursor blink commands
// they schedule.
func (f *fixture) typeText(s string) {
	for _, r := range s {
		f.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, messages.ViewMenu, f.app.CurrentView())
	assert.Equal(t, domain.SearchModeFilename, f.app.Mode())
	assert.NotNil(t, f.app.Init())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingSearchService)
	assert.Nil(t, app)
}

func TestApp_NotReadyUntilSized(t *testing.T) {
	app, err := NewApp(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "docmirror")
}

func TestApp_SearchFlow(t *testing.T) {
	f := newFixture(t)

	f.send(key("enter")) // menu: Search
	require.Equal(t, messages.ViewSearch, f.app.CurrentView())

	f.typeText("budget")
	assert.Equal(t, "budget", f.app.Query())

	f.send(key("tab")) // filename -> keyword
	f.send(key("enter"))

	require.Len(t, f.search.queries, 1)
	assert.Equal(t, domain.SearchQuery{Query: "budget", Mode: domain.SearchModeKeyword}, f.search.queries[0])
	require.Len(t, f.app.Results(), 1)
	assert.Contains(t, f.app.View(), "budget approved")
}

func TestApp_SearchErrorRecorded(t *testing.T) {
	f := newFixture(t)
	f.search.err = domain.NewError(domain.KindInvalidSearchMode, "bad mode")

	f.send(messages.ViewChanged{View: messages.ViewSearch})
	f.typeText("x")
	f.send(key("enter"))

	assert.ErrorIs(t, f.app.Err(), domain.ErrInvalidSearchMode)
}

func TestApp_ResultDetailsAndBack(t *testing.T) {
	f := newFixture(t)
	f.send(messages.ViewChanged{View: messages.ViewSearch})
	f.typeText("b")
	f.send(key("enter"))

	f.send(key("enter")) // open action menu
	f.send(key("enter")) // Show details, the first action without result actions wired

	require.Equal(t, messages.ViewDocDetails, f.app.CurrentView())
	assert.Contains(t, f.app.View(), "aaaa1111")

	f.send(key("esc"))
	assert.Equal(t, messages.ViewSearch, f.app.CurrentView())
	assert.Len(t, f.app.Results(), 1, "returning from details keeps the results")
}

func TestApp_DocumentsFlow(t *testing.T) {
	f := newFixture(t)

	f.send(key("down"))
	f.send(key("enter")) // menu: Documents
	require.Equal(t, messages.ViewDocuments, f.app.CurrentView())
	assert.Contains(t, f.app.View(), "Budget")

	f.send(key("enter")) // action menu
	f.send(key("enter")) // Show Content
	require.Equal(t, messages.ViewDocContent, f.app.CurrentView())
	assert.Contains(t, f.app.View(), "budget approved")

	f.send(key("esc"))
	assert.Equal(t, messages.ViewDocuments, f.app.CurrentView())

	f.send(key("esc"))
	assert.Equal(t, messages.ViewMenu, f.app.CurrentView())
}

func TestApp_Resync(t *testing.T) {
	f := newFixture(t)

	f.send(messages.SyncRequested{})

	assert.Equal(t, 1, f.sync.calls)
	assert.Contains(t, f.app.View(), "Resynchronised 2 roots.")
}

func TestApp_ResyncFailure(t *testing.T) {
	f := newFixture(t)
	f.sync.err = errors.New("disk full")

	f.send(messages.SyncRequested{})

	assert.EqualError(t, f.app.Err(), "disk full")
	assert.Contains(t, f.app.View(), "Resync failed: disk full")
}

func TestApp_ResyncWithoutSynchronizer(t *testing.T) {
	app, err := NewApp(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	_, cmd := app.Update(messages.SyncRequested{})
	assert.Nil(t, cmd)
}

func TestApp_SessionView(t *testing.T) {
	f := newFixture(t)

	f.send(messages.ViewChanged{View: messages.ViewSession})

	assert.Equal(t, messages.ViewSession, f.app.CurrentView())
	assert.Contains(t, f.app.View(), "docmirror://h/s?token=tok")
}

func TestApp_HelpView(t *testing.T) {
	f := newFixture(t)

	f.send(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, f.app.View(), "Cycle keyword / context / filename")

	f.send(key("esc"))
	assert.Equal(t, messages.ViewMenu, f.app.CurrentView())
}

func TestApp_CtrlCQuits(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)

	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_WithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Same(t, f.app, f.app.WithContext(ctx))
}
