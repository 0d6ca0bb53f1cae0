package documents

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

type mockDocumentService struct {
	docs []driving.DocumentDetails
	err  error
}

func (m *mockDocumentService) Resolve(context.Context, string) (*driving.DocumentDetails, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(context.Context) ([]driving.DocumentDetails, error) {
	return m.docs, m.err
}

type mockActionService struct {
	opened []string
}

func (m *mockActionService) Locate(_ context.Context, r *domain.SearchResult) (string, error) {
	return r.Path, nil
}

func (m *mockActionService) CopyToClipboard(context.Context, *domain.SearchResult) error {
	return nil
}

func (m *mockActionService) OpenDocument(_ context.Context, r *domain.SearchResult) error {
	m.opened = append(m.opened, r.Path)
	return nil
}

func sampleDocs() []driving.DocumentDetails {
	return []driving.DocumentDetails{
		{
			Document: &domain.NormalizedDocument{Hash: "aaaa1111aaaa1111", Title: "Budget notes", Text: "budget"},
			Paths:    []string{"notes/a.txt", "copy/a.txt"},
		},
		{
			Document: &domain.NormalizedDocument{Hash: "bbbb2222bbbb2222"},
			Paths:    []string{"data/b.csv"},
		},
	}
}

func loaded(t *testing.T, docs *mockDocumentService, actions *mockActionService) *View {
	t.Helper()
	v := NewView(nil, docs, actions)
	v.SetDimensions(100, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func TestView_LoadsDocuments(t *testing.T) {
	v := loaded(t, &mockDocumentService{docs: sampleDocs()}, nil)

	require.Len(t, v.Documents(), 2)
	view := v.View()
	assert.Contains(t, view, "Documents (2)")
	assert.Contains(t, view, "Budget notes")
	assert.Contains(t, view, "notes/a.txt, copy/a.txt")
	assert.Contains(t, view, "bbbb2222bbbb")
}

func TestView_Empty(t *testing.T) {
	v := loaded(t, &mockDocumentService{}, nil)

	assert.Contains(t, v.View(), "No documents mirrored yet")
}

func TestView_LoadError(t *testing.T) {
	v := loaded(t, &mockDocumentService{err: errors.New("database locked")}, nil)

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "Error: database locked")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), errNoDocumentService)
}

func TestView_Navigation(t *testing.T) {
	v := loaded(t, &mockDocumentService{docs: sampleDocs()}, nil)

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.SelectedIndex())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, v.SelectedIndex())
}

func TestView_ShowContentAction(t *testing.T) {
	v := loaded(t, &mockDocumentService{docs: sampleDocs()}, nil)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.IsShowingMenu())
	assert.Contains(t, v.View(), "Actions for: Budget notes")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	selected, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, "aaaa1111aaaa1111", selected.Details.Document.Hash)
	assert.False(t, v.IsShowingMenu())
}

func TestView_ShowDetailsAction(t *testing.T) {
	v := loaded(t, &mockDocumentService{docs: sampleDocs()}, nil)
	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	details, ok := cmd().(messages.DocumentDetailsLoaded)
	require.True(t, ok)
	assert.Equal(t, []string{"data/b.csv"}, details.Details.Paths)
}

func TestView_OpenAction(t *testing.T) {
	actions := &mockActionService{}
	v := loaded(t, &mockDocumentService{docs: sampleDocs()}, actions)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, []string{"notes/a.txt"}, actions.opened)
	assert.Contains(t, v.View(), "Opened notes/a.txt")
}

func TestView_CancelAndEsc(t *testing.T) {
	v := loaded(t, &mockDocumentService{docs: sampleDocs()}, nil)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.IsShowingMenu())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Reload(t *testing.T) {
	svc := &mockDocumentService{}
	v := loaded(t, svc, nil)
	assert.Empty(t, v.Documents())

	svc.docs = sampleDocs()
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Len(t, v.Documents(), 2)
}
