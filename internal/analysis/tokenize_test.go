package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"only separators", " ,.;-- ", nil},
		{"lowercases and stems", "Running Runners", []string{"run", "runner"}},
		{"drops stop words", "the quick fox", []string{"quick", "fox"}},
		{"drops single runes", "a b c fox", []string{"fox"}},
		{"keeps digits unstemmed", "invoice 2024", []string{"invoic", "2024"}},
		{"splits on punctuation", "hello,world", []string{"hello", "world"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Terms(tt.input))
		})
	}
}

func TestTokens_PositionsAreOrdinals(t *testing.T) {
	toks := Tokens("the cat sat on the mat")
	assert.Equal(t, []Token{
		{Term: "cat", Position: 0},
		{Term: "sat", Position: 1},
		{Term: "mat", Position: 2},
	}, toks)
}

func TestTokens_NoEmptyTerms(t *testing.T) {
	for _, tok := range Tokens("«» -- !! x y zz ÅÄÖ") {
		assert.NotEmpty(t, tok.Term)
	}
}

func TestUniqueTerms(t *testing.T) {
	assert.Equal(t, []string{"cat", "dog"}, UniqueTerms("cat dog cats dog"))
}

func TestMatches(t *testing.T) {
	terms := map[string]struct{}{"run": {}}
	assert.True(t, Matches("Running", terms))
	assert.False(t, Matches("the", terms))
	assert.False(t, Matches("walk", terms))
}

func TestTerms_Deterministic(t *testing.T) {
	text := "Quarterly revenue grew; revenue forecasts were revised upward."
	assert.Equal(t, Terms(text), Terms(text))
}
