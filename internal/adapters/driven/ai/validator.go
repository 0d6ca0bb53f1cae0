package ai

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

var _ driven.CapabilityValidator = (*ConfigValidator)(nil)

// ConfigValidator validates capability provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new capability config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding creates the embedding service and pings it.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(context.Background(), settings)
	if svc != nil {
		_ = svc.Close()
	}
	return err
}

// ValidateSummary creates the summary service and pings it.
func (v *ConfigValidator) ValidateSummary(settings *domain.SummarySettings) error {
	svc, err := CreateAndValidateSummaryService(context.Background(), settings, nil)
	if svc != nil {
		_ = svc.Close()
	}
	return err
}

// ValidateOCR checks the OCR tool is installed.
func (v *ConfigValidator) ValidateOCR(settings *domain.OCRSettings) error {
	_, err := CreateOCRService(settings)
	return err
}
