package search

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
	queries    []domain.SearchQuery
}

func (m *MockSearchService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	m.queries = append(m.queries, query)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return testSearchResults(), nil
}

// MockResultActionService implements driving.ResultActionService for testing.
type MockResultActionService struct {
	copied  []string
	opened  []string
	openErr error
}

func (m *MockResultActionService) Locate(_ context.Context, result *domain.SearchResult) (string, error) {
	return "/abs/" + result.Path, nil
}

func (m *MockResultActionService) CopyToClipboard(_ context.Context, result *domain.SearchResult) error {
	m.copied = append(m.copied, result.Path)
	return nil
}

func (m *MockResultActionService) OpenDocument(_ context.Context, result *domain.SearchResult) error {
	m.opened = append(m.opened, result.Path)
	return m.openErr
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct{}

func (MockDocumentService) Resolve(_ context.Context, ref string) (*driving.DocumentDetails, error) {
	return &driving.DocumentDetails{
		Document: &domain.NormalizedDocument{Hash: ref, Title: "Resolved"},
		Paths:    []string{"notes/a.txt"},
	}, nil
}

func (MockDocumentService) List(context.Context) ([]driving.DocumentDetails, error) {
	return nil, nil
}

func testSearchResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Hash: "aaaa1111", Path: "notes/a.txt", Title: "Budget notes", Score: 0.95,
			Snippet: "the quarterly budget was approved", ModTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
		{Hash: "bbbb2222", Path: "data/b.csv", Score: 0.5},
	}
}

type fixture struct {
	view    *View
	search  *MockSearchService
	actions *MockResultActionService
}

func newFixture() *fixture {
	f := &fixture{search: &MockSearchService{}, actions: &MockResultActionService{}}
	f.view = NewView(nil, nil, Services{
		Search:   f.search,
		Actions:  f.actions,
		Document: MockDocumentService{},
	}, domain.SearchModeKeyword)
	f.view.SetDimensions(100, 40)
	return f
}

func typeText(v *View, s string) {
	for _, r := range s {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// run executes cmd and feeds its message back into the view.
func run(t *testing.T, v *View, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	v.Update(msg)
	return msg
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil, Services{}, "")

	assert.Equal(t, domain.SearchModeKeyword, v.Mode())
	assert.True(t, v.InputFocused())
	assert.True(t, v.PreviewVisible())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_SubmitSearch(t *testing.T) {
	f := newFixture()
	typeText(f.view, "budget")

	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := run(t, f.view, cmd)

	completed, ok := msg.(messages.SearchCompleted)
	require.True(t, ok)
	assert.Equal(t, domain.SearchQuery{Query: "budget", Mode: domain.SearchModeKeyword}, completed.Query)
	assert.Len(t, f.view.Results(), 2)
	assert.False(t, f.view.InputFocused())
	assert.Contains(t, f.view.View(), "Budget notes")
}

func TestView_EmptyQueryIgnored(t *testing.T) {
	f := newFixture()
	typeText(f.view, "   ")

	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, f.search.queries)
}

func TestView_TabCyclesModes(t *testing.T) {
	f := newFixture()

	want := []domain.SearchMode{domain.SearchModeContext, domain.SearchModeFilename, domain.SearchModeKeyword}
	for _, mode := range want {
		_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyTab})
		assert.Nil(t, cmd)
		assert.Equal(t, mode, f.view.Mode())
	}
	assert.Contains(t, f.view.View(), "keyword")
}

func TestView_TabRerunsSearchInResultsMode(t *testing.T) {
	f := newFixture()
	typeText(f.view, "budget")
	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, f.view, cmd)

	_, cmd = f.view.Update(tea.KeyMsg{Type: tea.KeyTab})
	run(t, f.view, cmd)

	require.Len(t, f.search.queries, 2)
	assert.Equal(t, domain.SearchModeContext, f.search.queries[1].Mode)
	assert.Equal(t, "budget", f.search.queries[1].Query)
}

func TestView_SearchError(t *testing.T) {
	f := newFixture()
	f.search.SearchFunc = func(context.Context, domain.SearchQuery) ([]domain.SearchResult, error) {
		return nil, domain.NewError(domain.KindIndexUnavailable, "context search needs an embedding provider")
	}
	typeText(f.view, "x")
	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, f.view, cmd)

	require.Error(t, f.view.Err())
	assert.ErrorIs(t, f.view.Err(), domain.ErrIndexUnavailable)
	assert.Contains(t, f.view.View(), "IndexUnavailable")
	assert.Empty(t, f.view.Results())
}

func TestView_NoSearchService(t *testing.T) {
	v := NewView(nil, nil, Services{}, domain.SearchModeKeyword)
	v.SetDimensions(80, 24)
	typeText(v, "x")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)

	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}

func TestView_PreviewShowsSnippet(t *testing.T) {
	f := newFixture()
	f.view.Update(messages.SearchCompleted{Results: testSearchResults()})

	view := f.view.View()
	assert.Contains(t, view, "the quarterly budget was approved")
	assert.Contains(t, view, "modified")

	f.view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	assert.False(t, f.view.PreviewVisible())
	assert.NotContains(t, f.view.View(), "the quarterly budget was approved")

	f.view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	f.view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, f.view.View(), "(no preview)")
}

func TestView_NewSearchRefocusesInput(t *testing.T) {
	f := newFixture()
	f.view.SetQuery("old")
	f.view.Update(messages.SearchCompleted{Results: testSearchResults()})

	f.view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.True(t, f.view.InputFocused())
	assert.Equal(t, "", f.view.Query())
}

func TestView_ActionMenuOpenDocument(t *testing.T) {
	f := newFixture()
	f.view.Update(messages.SearchCompleted{Results: testSearchResults()})

	f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, f.view.ActionMenuVisible())
	assert.Contains(t, f.view.View(), ActionDetails)

	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, f.view.ActionMenuVisible())
	run(t, f.view, cmd)

	assert.Equal(t, []string{"notes/a.txt"}, f.actions.opened)
	assert.Equal(t, "Opened notes/a.txt", f.view.StatusMessage())
}

func TestView_ActionMenuCopyPath(t *testing.T) {
	f := newFixture()
	f.view.Update(messages.SearchCompleted{Results: testSearchResults()})
	f.view.Update(tea.KeyMsg{Type: tea.KeyDown})

	f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	f.view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, f.view, cmd)

	assert.Equal(t, []string{"data/b.csv"}, f.actions.copied)
	assert.Equal(t, "Copied path to clipboard", f.view.StatusMessage())
}

func TestView_ActionMenuOpenFailure(t *testing.T) {
	f := newFixture()
	f.actions.openErr = errors.New("no opener")
	f.view.Update(messages.SearchCompleted{Results: testSearchResults()})

	f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, f.view, cmd)

	assert.Equal(t, "Open: no opener", f.view.StatusMessage())
}

func TestView_ActionMenuShowDetails(t *testing.T) {
	f := newFixture()
	f.view.Update(messages.SearchCompleted{Results: testSearchResults()})

	f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	f.view.Update(tea.KeyMsg{Type: tea.KeyDown})
	f.view.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	loaded, ok := cmd().(messages.DocumentDetailsLoaded)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	assert.Equal(t, "aaaa1111", loaded.Details.Document.Hash)
}

func TestView_ActionMenuOnlyOffersWiredActions(t *testing.T) {
	v := NewView(nil, nil, Services{Search: &MockSearchService{}}, domain.SearchModeKeyword)

	assert.Equal(t, []string{ActionCancel}, v.availableActions())
}

func TestView_ActionMenuEscCloses(t *testing.T) {
	f := newFixture()
	f.view.Update(messages.SearchCompleted{Results: testSearchResults()})
	f.view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, f.view.ActionMenuVisible())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	f := newFixture()

	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ResetKeepsMode(t *testing.T) {
	f := newFixture()
	f.view.Update(tea.KeyMsg{Type: tea.KeyTab})
	f.view.Update(messages.SearchCompleted{Results: testSearchResults()})

	f.view.Reset()

	assert.True(t, f.view.InputFocused())
	assert.Empty(t, f.view.Results())
	assert.Equal(t, domain.SearchModeContext, f.view.Mode())
}
