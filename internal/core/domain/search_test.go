package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		input    string
		expected SearchMode
	}{
		{"keyword", SearchModeKeyword},
		{"keywords", SearchModeKeyword},
		{"KEYWORD", SearchModeKeyword},
		{"context", SearchModeContext},
		{"semantic", SearchModeContext},
		{"filename", SearchModeFilename},
		{" name ", SearchModeFilename},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseSearchMode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestParseSearchMode_Unknown(t *testing.T) {
	_, err := ParseSearchMode("blended")
	assert.ErrorIs(t, err, ErrInvalidSearchMode)
}

// TestSearchMode_IsValid tests all valid and invalid search modes
func TestSearchMode_IsValid(t *testing.T) {
	for _, m := range AllSearchModes() {
		assert.True(t, m.IsValid(), m.String())
		assert.NotEqual(t, unknownDescription, m.Description())
	}
	assert.False(t, SearchMode("").IsValid())
	assert.Equal(t, unknownDescription, SearchMode("x").Description())
}

func TestSearchMode_RequiresEmbedding(t *testing.T) {
	assert.True(t, SearchModeContext.RequiresEmbedding())
	assert.False(t, SearchModeKeyword.RequiresEmbedding())
	assert.False(t, SearchModeFilename.RequiresEmbedding())
}
