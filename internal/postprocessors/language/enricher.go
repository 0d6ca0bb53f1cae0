// Package language detects the dominant language of a document.
package language

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/analysis"
	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// Enricher sets Metadata.Language.
type Enricher struct{}

// New creates a language enricher.
func New() *Enricher {
	return &Enricher{}
}

// Name returns the step name.
func (e *Enricher) Name() string { return "language" }

// Enrich detects the language. Text too short to classify leaves the
// field empty without degrading the document.
func (e *Enricher) Enrich(_ context.Context, doc *domain.NormalizedDocument) error {
	if doc.Metadata.Language != "" {
		return nil
	}
	doc.Metadata.Language = analysis.DetectLanguage(doc.Text)
	return nil
}
