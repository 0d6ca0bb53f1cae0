// Package embedding attaches a semantic vector to a document.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// maxEmbedInput bounds the text sent to the embedding service.
const maxEmbedInput = 8000

// Enricher sets Embedding.
type Enricher struct {
	svc driven.EmbeddingService
}

// New creates an embedding enricher backed by svc.
func New(svc driven.EmbeddingService) *Enricher {
	return &Enricher{svc: svc}
}

// Name returns the step name.
func (e *Enricher) Name() string { return "embedding" }

// Enrich embeds the title and the leading text of the document.
func (e *Enricher) Enrich(ctx context.Context, doc *domain.NormalizedDocument) error {
	input := Input(doc)
	if input == "" {
		return nil
	}
	vec, err := e.svc.Embed(ctx, input)
	if err != nil {
		return fmt.Errorf("embed with %s: %w", e.svc.ModelName(), err)
	}
	if want := e.svc.Dimensions(); want > 0 && len(vec) != want {
		return fmt.Errorf("embedding has %d dimensions, want %d", len(vec), want)
	}
	doc.Embedding = vec
	return nil
}

// Input returns the text embedded for a document.
func Input(doc *domain.NormalizedDocument) string {
	text := strings.TrimSpace(doc.Title + "\n" + doc.Text)
	if len(text) > maxEmbedInput {
		text = strings.ToValidUTF8(text[:maxEmbedInput], "")
	}
	return text
}
