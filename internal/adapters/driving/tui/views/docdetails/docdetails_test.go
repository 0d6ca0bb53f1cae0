package docdetails

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

type mockActionService struct {
	copied []string
}

func (m *mockActionService) Locate(_ context.Context, r *domain.SearchResult) (string, error) {
	return r.Path, nil
}

func (m *mockActionService) CopyToClipboard(_ context.Context, r *domain.SearchResult) error {
	m.copied = append(m.copied, r.Path)
	return nil
}

func (m *mockActionService) OpenDocument(context.Context, *domain.SearchResult) error {
	return nil
}

func sampleDetails() *driving.DocumentDetails {
	created := time.Date(2025, 11, 2, 10, 30, 0, 0, time.UTC)
	return &driving.DocumentDetails{
		Document: &domain.NormalizedDocument{
			Hash:     "aaaa1111",
			Title:    "Quarterly report",
			MIMEType: "application/pdf",
			Format:   string(domain.FormatMarkup),
			Metadata: domain.Metadata{
				Author:    "Finance",
				CreatedAt: &created,
				PageCount: 12,
				Language:  "en",
				Extra:     map[string]string{"producer": "LibreOffice", "creator": "Writer"},
			},
			Entities: []domain.Entity{{Type: "email", Text: "cfo@example.com"}},
			Summary:  "Revenue grew.",
		},
		Paths: []string{"reports/q3.pdf", "archive/q3.pdf"},
	}
}

func TestView_RendersRecord(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 60)
	v.SetDetails(sampleDetails(), messages.ViewSearch)

	view := v.View()
	for _, want := range []string{
		"Quarterly report", "application/pdf (structured-markup)", "Finance", "2025-11-02 10:30:00",
		"12", "reports/q3.pdf", "archive/q3.pdf", "Revenue grew.", "cfo@example.com", "producer: LibreOffice",
	} {
		assert.Contains(t, view, want)
	}
}

func TestView_MetadataSorted(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDetails(sampleDetails(), messages.ViewDocuments)

	lines := v.buildContent()
	var extra []string
	for i, l := range lines {
		if l == "Metadata:" {
			extra = lines[i+1:]
		}
	}
	require.Len(t, extra, 2)
	assert.Equal(t, "  creator: Writer", extra[0])
}

func TestView_Empty(t *testing.T) {
	v := NewView(nil, nil)

	assert.Contains(t, v.View(), "No document details available")
	assert.Nil(t, v.Init())
}

func TestView_Error(t *testing.T) {
	v := NewView(nil, nil)
	v.Update(messages.ErrorOccurred{Err: errors.New("gone")})

	assert.Contains(t, v.View(), "Error: gone")
	assert.Error(t, v.Err())
}

func TestView_EscReturnsToOrigin(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDetails(sampleDetails(), messages.ViewSearch)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewSearch}, cmd())
}

func TestView_CopyPath(t *testing.T) {
	actions := &mockActionService{}
	v := NewView(nil, actions)
	v.SetDetails(sampleDetails(), messages.ViewDocuments)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, []string{"reports/q3.pdf"}, actions.copied)
	assert.Contains(t, v.View(), "Copied reports/q3.pdf")
}

func TestView_CopyWithoutActionsIsNoop(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDetails(sampleDetails(), messages.ViewDocuments)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	assert.Nil(t, cmd)
}

func TestView_Scroll(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(80, 10)
	v.SetDetails(sampleDetails(), messages.ViewDocuments)

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.scrollOffset)

	for range 50 {
		v.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, v.maxScrollOffset(), v.scrollOffset)
	assert.Contains(t, v.View(), "[Line")
}
