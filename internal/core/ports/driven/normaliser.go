package driven

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// Normaliser extracts text and metadata from one family of formats.
// Implementations are side-effect free.
type Normaliser interface {
	// Name identifies the extraction strategy. It is recorded as the
	// document's Format.
	Name() string

	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts a document. The raw document's DeclaredMIME holds
	// the resolved type and Hash is already set.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error)
}

// NormaliserRegistry selects the appropriate normaliser for a document.
type NormaliserRegistry interface {
	// Normalise resolves the content type, extracts with the best matching
	// normaliser under the extraction deadline and runs enrichment.
	// Errors carry the UnsupportedFormat, CorruptInput or ExtractionTimeout
	// kinds.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

// Enricher adds derived fields to a normalised document.
// Enrichers are chained in a pipeline (language, entities, summary,
// embedding).
type Enricher interface {
	// Name returns the step name, used in the degraded marker and logs.
	Name() string

	// Enrich mutates doc in place. An error degrades the document; it
	// never fails normalisation.
	Enrich(ctx context.Context, doc *domain.NormalizedDocument) error
}

// EnrichmentPipeline chains Enrichers.
type EnrichmentPipeline interface {
	// Process runs the document through every enricher in order, marking
	// the document degraded for each step that fails.
	Process(ctx context.Context, doc *domain.NormalizedDocument)
}
