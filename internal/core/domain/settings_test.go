package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Positive(t, s.Sync.Workers)
	assert.Equal(t, FormatRecord, s.Sync.DefaultFormat)
	assert.Equal(t, 30*time.Second, s.Sync.ExtractionTimeout)
	assert.Equal(t, SearchModeKeyword, s.Search.DefaultMode)
	assert.Equal(t, 20, s.Search.DefaultLimit)
	assert.Equal(t, AIProviderHashing, s.Embedding.Provider)
	assert.True(t, s.Embedding.IsConfigured())
	assert.Equal(t, 15*time.Minute, s.Session.TTL)
}

// TestAIProvider_IsValid tests provider validation
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		valid    bool
	}{
		{AIProviderNone, true},
		{AIProviderHashing, true},
		{AIProviderFrequency, true},
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderTesseract, true},
		{AIProviderAnthropic, true},
		{AIProvider("gemini"), false},
		{AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderHashing.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
}

func TestAIProvider_IsRemote(t *testing.T) {
	assert.True(t, AIProviderAnthropic.IsRemote())
	assert.True(t, AIProviderOllama.IsRemote())
	assert.False(t, AIProviderFrequency.IsRemote())
	assert.False(t, AIProviderTesseract.IsRemote())
	assert.Equal(t, "Anthropic (cloud)", AIProviderAnthropic.Description())
}

func TestSummarySettings_IsConfigured(t *testing.T) {
	assert.True(t, DefaultAppSettings().Summary.IsConfigured())
	assert.False(t, SummarySettings{Provider: AIProviderNone}.IsConfigured())
	assert.False(t, SummarySettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, SummarySettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{Provider: AIProviderNone}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	assert.Equal(t, 768, dims[DefaultEmbeddingModels()[AIProviderOllama]])
	assert.Equal(t, 1536, dims[DefaultEmbeddingModels()[AIProviderOpenAI]])
}
