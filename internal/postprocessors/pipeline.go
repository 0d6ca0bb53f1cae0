// Package postprocessors provides the document enrichment pipeline.
package postprocessors

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.EnrichmentPipeline = (*Pipeline)(nil)

// Pipeline chains multiple Enrichers and runs them in order.
// A failing enricher degrades the document and the pipeline carries on.
type Pipeline struct {
	enrichers []driven.Enricher
}

// NewPipeline creates a new enrichment pipeline with the given enrichers.
// Enrichers are executed in the order provided.
func NewPipeline(enrichers ...driven.Enricher) *Pipeline {
	return &Pipeline{
		enrichers: enrichers,
	}
}

// Process runs the document through all enrichers in order.
func (p *Pipeline) Process(ctx context.Context, doc *domain.NormalizedDocument) {
	if doc == nil {
		return
	}

	for _, e := range p.enrichers {
		if ctx.Err() != nil {
			doc.Degrade(e.Name())
			continue
		}
		if err := e.Enrich(ctx, doc); err != nil {
			logger.Warn("enrich %s: %s: %v", doc.Hash, e.Name(), err)
			doc.Degrade(e.Name())
		}
	}
}

// Add appends an enricher to the pipeline.
func (p *Pipeline) Add(e driven.Enricher) {
	p.enrichers = append(p.enrichers, e)
}

// Len returns the number of enrichers in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.enrichers)
}

// Names returns the enricher names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.enrichers))
	for i, e := range p.enrichers {
		names[i] = e.Name()
	}
	return names
}
