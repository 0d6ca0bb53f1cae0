// Package hashing provides an offline embedding service that projects
// analysed terms into a fixed number of buckets (the hashing trick).
//
// Vectors need no corpus statistics, so a document embedded today and a
// query embedded tomorrow land in the same space.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/custodia-labs/docmirror/internal/analysis"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is used when no size is configured.
const DefaultDimensions = 256

// ModelName is reported for vectors produced by this service.
const ModelName = "hashing-v1"

// EmbeddingService hashes terms into signed buckets with sublinear term
// frequency and L2 normalisation.
type EmbeddingService struct {
	dimensions int
}

// New creates a hashing embedder with the given vector size.
func New(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the unit-length vector for text. Text without any
// analysable terms yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, t := range analysis.Terms(text) {
		counts[t]++
	}

	acc := make([]float64, s.dimensions)
	for term, n := range counts {
		bucket, sign := s.slot(term)
		acc[bucket] += sign * (1 + math.Log(float64(n)))
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in turn.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// slot picks the bucket from the low bits of the hash and the sign from
// the top bit, so colliding terms tend to cancel rather than accumulate.
func (s *EmbeddingService) slot(term string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(term))
	sum := h.Sum64()
	sign := 1.0
	if sum>>63 == 1 {
		sign = -1
	}
	return int(sum % uint64(s.dimensions)), sign
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the embedder's identifier.
func (s *EmbeddingService) ModelName() string {
	return fmt.Sprintf("%s-%d", ModelName, s.dimensions)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
