package ratelimit

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = (*Embedding)(nil)
	_ driven.SummaryService   = (*Summary)(nil)
	_ driven.PromptStoreAware = (*Summary)(nil)
)

// Embedding rate limits an embedding service.
type Embedding struct {
	driven.EmbeddingService
	limiter *Limiter
}

// WrapEmbedding returns svc throttled by limiter.
func WrapEmbedding(svc driven.EmbeddingService, limiter *Limiter) *Embedding {
	return &Embedding{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for the limiter before embedding.
func (e *Embedding) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := e.limiter.do(ctx, e.ModelName(), func() error {
		var err error
		vec, err = e.EmbeddingService.Embed(ctx, text)
		return err
	})
	return vec, err
}

// EmbedBatch waits for the limiter before embedding. A batch costs one
// request.
func (e *Embedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := e.limiter.do(ctx, e.ModelName(), func() error {
		var err error
		vecs, err = e.EmbeddingService.EmbedBatch(ctx, texts)
		return err
	})
	return vecs, err
}

// Summary rate limits a summary service.
type Summary struct {
	driven.SummaryService
	limiter *Limiter
}

// WrapSummary returns svc throttled by limiter.
func WrapSummary(svc driven.SummaryService, limiter *Limiter) *Summary {
	return &Summary{SummaryService: svc, limiter: limiter}
}

// Summarise waits for the limiter before summarising.
func (s *Summary) Summarise(ctx context.Context, text string, maxLength int) (string, error) {
	var out string
	err := s.limiter.do(ctx, s.ModelName(), func() error {
		var err error
		out, err = s.SummaryService.Summarise(ctx, text, maxLength)
		return err
	})
	return out, err
}

// SetPromptStore forwards to the wrapped service when it accepts prompts.
func (s *Summary) SetPromptStore(store driven.PromptStore) {
	if aware, ok := s.SummaryService.(driven.PromptStoreAware); ok {
		aware.SetPromptStore(store)
	}
}

// Ping forwards to the wrapped service when it can be pinged.
func (s *Summary) Ping(ctx context.Context) error {
	if p, ok := s.SummaryService.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Unwrap returns the throttled service.
func (s *Summary) Unwrap() driven.SummaryService {
	return s.SummaryService
}
