package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestConfigValidator(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderHashing}))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderNone}))
	assert.ErrorIs(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}), domain.ErrInvalidInput)

	assert.NoError(t, v.ValidateSummary(&domain.SummarySettings{Provider: domain.AIProviderFrequency}))
	assert.Error(t, v.ValidateSummary(&domain.SummarySettings{Provider: domain.AIProviderOpenAI}))

	assert.NoError(t, v.ValidateOCR(&domain.OCRSettings{Provider: domain.AIProviderNone}))
}

func TestConfigValidator_Unreachable(t *testing.T) {
	srv := downServer(t)
	v := NewConfigValidator()

	err := v.ValidateSummary(&domain.SummarySettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL})
	assert.ErrorContains(t, err, "unreachable")

	withTesseract(t, false)
	assert.ErrorIs(t, v.ValidateOCR(&domain.OCRSettings{Provider: domain.AIProviderTesseract}), domain.ErrCapabilityUnavailable)
}
