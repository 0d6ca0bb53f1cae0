package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{Hash: "aaaa", Path: "notes/budget.txt", Title: "Budget 2026", Score: 0.91},
		{Hash: "bbbb", Path: "data/sales.csv", Score: 0.52},
		{Hash: "cccc", Path: "misc/readme.md", Title: "Readme", Score: 0.10},
	}
}

func TestResultList_Empty(t *testing.T) {
	r := NewResultList(nil)

	assert.True(t, r.IsEmpty())
	assert.Nil(t, r.SelectedResult())
	assert.Contains(t, r.View(), "No results")
}

func TestResultList_ViewRendersTitlesPathsAndScores(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(80, 20)
	r.SetResults(sampleResults())

	view := r.View()
	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "Budget 2026")
	assert.Contains(t, view, "notes/budget.txt")
	assert.Contains(t, view, "0.91")
	// Untitled results fall back to the path.
	assert.Equal(t, 2, strings.Count(view, "data/sales.csv"))
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(sampleResults())

	r.MoveUp()
	assert.Equal(t, 0, r.Selected())

	r.Update(tea.KeyMsg{Type: tea.KeyDown})
	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, r.Selected())

	r.MoveDown()
	assert.Equal(t, 2, r.Selected())

	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, r.Selected())

	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	require.NotNil(t, r.SelectedResult())
	assert.Equal(t, "cccc", r.SelectedResult().Hash)
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(sampleResults())
	r.SetSelected(2)

	r.SetResults(sampleResults()[:1])
	assert.Equal(t, 0, r.Selected())

	r.SetSelected(5)
	assert.Equal(t, 0, r.Selected())
}

func TestResultList_ScrollsToSelection(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(80, 4) // room for a single result
	r.SetResults(sampleResults())
	r.SetSelected(2)

	view := r.View()
	assert.Contains(t, view, "misc/readme.md")
	assert.NotContains(t, view, "notes/budget.txt")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "...dir/file.txt", truncateLeft("a/long/dir/file.txt", 15))
}
