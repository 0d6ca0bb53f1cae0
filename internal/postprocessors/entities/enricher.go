// Package entities attaches detected entities to a document.
package entities

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/analysis"
	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// Enricher sets Entities.
type Enricher struct{}

// New creates an entity enricher.
func New() *Enricher {
	return &Enricher{}
}

// Name returns the step name.
func (e *Enricher) Name() string { return "entities" }

// Enrich replaces the document's entities with those detected in its text.
func (e *Enricher) Enrich(_ context.Context, doc *domain.NormalizedDocument) error {
	doc.Entities = analysis.DetectEntities(doc.Text)
	return nil
}
