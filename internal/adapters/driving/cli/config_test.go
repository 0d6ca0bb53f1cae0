package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/services"
)

// Test helper functions in config.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func setupConfigTest(t *testing.T) *services.SettingsService {
	t.Helper()
	svc := services.NewSettingsService(memory.NewConfigStore(), nil)
	old := settingsService
	settingsService = svc
	t.Cleanup(func() {
		settingsService = old
		rootCmd.SetArgs(nil)
		configInput = os.Stdin
	})
	return svc
}

func TestConfigCmd_SetAndShow(t *testing.T) {
	svc := setupConfigTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "search.default_limit", "7"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Set search.default_limit.")

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, settings.Search.DefaultLimit)

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "show"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "[Search]")
	assert.Contains(t, buf.String(), "Limit: 7")
	assert.Contains(t, buf.String(), "Feature hashing (built-in)")
}

func TestConfigCmd_SetUnknownKey(t *testing.T) {
	setupConfigTest(t)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"config", "set", "nope.key", "1"})
	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, `InvalidInput: unknown setting "nope.key"`, errorLine(err))
}

func TestConfigCmd_Keys(t *testing.T) {
	setupConfigTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "keys"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "sync.workers\n")
	assert.Contains(t, buf.String(), "session.ttl\n")
}

func TestConfigCmd_Wizard(t *testing.T) {
	svc := setupConfigTest(t)
	// Ollama embeddings with the default model, default summaries, no OCR.
	configInput = strings.NewReader("2\n\n\n1\n")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "wizard"})
	require.NoError(t, rootCmd.Execute())

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, domain.AIProviderFrequency, settings.Summary.Provider)
	assert.Equal(t, domain.AIProviderNone, settings.OCR.Provider)
	assert.Contains(t, buf.String(), "Configuration Complete!")
}
