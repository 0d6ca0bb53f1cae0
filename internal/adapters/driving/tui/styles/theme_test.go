package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.Error))
	for _, mode := range domain.AllSearchModes() {
		assert.NotEmpty(t, string(theme.Modes[mode]), "mode %s has no colour", mode)
	}
}

func TestDefaultTheme_ModeColoursAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[string]bool)
	for _, c := range theme.Modes {
		assert.False(t, seen[string(c)], "duplicate mode colour %s", c)
		seen[string(c)] = true
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
}

func TestStyles_ModeBadge(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.ModeBadge(domain.SearchModeKeyword), "keyword")
	assert.Contains(t, s.ModeBadge(domain.SearchModeFilename), "filename")
	assert.Contains(t, s.ModeBadge(domain.SearchMode("odd")), "odd")
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Path.Render("notes/a.txt"), "notes/a.txt")
	assert.Contains(t, s.Preview.Render("snippet"), "snippet")
}
