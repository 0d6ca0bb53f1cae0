package embedding

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

type stubService struct {
	vec  []float32
	dims int
	got  string
}

func (s *stubService) Embed(_ context.Context, text string) ([]float32, error) {
	s.got = text
	return s.vec, nil
}
func (s *stubService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}
func (s *stubService) Dimensions() int              { return s.dims }
func (s *stubService) ModelName() string            { return "stub" }
func (s *stubService) Ping(_ context.Context) error { return nil }
func (s *stubService) Close() error                 { return nil }

func TestEnrich(t *testing.T) {
	svc := &stubService{vec: []float32{0.5, 0.5}, dims: 2}
	doc := &domain.NormalizedDocument{Title: "T", Text: "body"}

	require.NoError(t, New(svc).Enrich(context.Background(), doc))
	assert.Equal(t, []float32{0.5, 0.5}, doc.Embedding)
	assert.Equal(t, "T\nbody", svc.got)
}

func TestEnrich_DimensionMismatch(t *testing.T) {
	svc := &stubService{vec: []float32{1}, dims: 3}
	doc := &domain.NormalizedDocument{Text: "body"}

	assert.Error(t, New(svc).Enrich(context.Background(), doc))
	assert.Nil(t, doc.Embedding)
}

func TestEnrich_EmptyDocument(t *testing.T) {
	svc := &stubService{}
	require.NoError(t, New(svc).Enrich(context.Background(), &domain.NormalizedDocument{}))
	assert.Empty(t, svc.got)
}

func TestInput_Truncates(t *testing.T) {
	doc := &domain.NormalizedDocument{Text: strings.Repeat("é", maxEmbedInput)}
	in := Input(doc)
	assert.LessOrEqual(t, len(in), maxEmbedInput)
	assert.True(t, strings.HasPrefix(doc.Text, in))
}
