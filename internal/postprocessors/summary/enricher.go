// Package summary attaches a capability-provided summary to a document.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// DefaultMaxLength is the default summary length in characters.
const DefaultMaxLength = 280

// Enricher sets Summary.
type Enricher struct {
	svc       driven.SummaryService
	maxLength int
}

// Option configures the summary enricher.
type Option func(*Enricher)

// WithMaxLength sets the maximum summary length in characters.
func WithMaxLength(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.maxLength = n
		}
	}
}

// New creates a summary enricher backed by svc.
func New(svc driven.SummaryService, opts ...Option) *Enricher {
	e := &Enricher{svc: svc, maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the step name.
func (e *Enricher) Name() string { return "summary" }

// Enrich summarises non-empty text.
func (e *Enricher) Enrich(ctx context.Context, doc *domain.NormalizedDocument) error {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}
	s, err := e.svc.Summarise(ctx, doc.Text, e.maxLength)
	if err != nil {
		return fmt.Errorf("summarise with %s: %w", e.svc.ModelName(), err)
	}
	doc.Summary = strings.TrimSpace(s)
	return nil
}
