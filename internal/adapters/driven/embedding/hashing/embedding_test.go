package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestNew_Dimensions(t *testing.T) {
	assert.Equal(t, DefaultDimensions, New(0).Dimensions())
	assert.Equal(t, 64, New(64).Dimensions())
	assert.Equal(t, "hashing-v1-64", New(64).ModelName())
}

func TestEmbed_UnitLength(t *testing.T) {
	s := New(128)
	vec, err := s.Embed(context.Background(), "Invoices are due at the end of the month")
	require.NoError(t, err)
	require.Len(t, vec, 128)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbed_Deterministic(t *testing.T) {
	a, err := New(64).Embed(context.Background(), "quarterly revenue report")
	require.NoError(t, err)
	b, err := New(64).Embed(context.Background(), "quarterly revenue report")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbed_SimilarTextsAreCloser(t *testing.T) {
	s := New(256)
	ctx := context.Background()
	doc, _ := s.Embed(ctx, "the invoice lists payments received from customers")
	near, _ := s.Embed(ctx, "customer payments on the invoice")
	far, _ := s.Embed(ctx, "mountain hiking trail weather forecast")

	assert.Greater(t, cosine(doc, near), cosine(doc, far))
}

func TestEmbed_NoTermsIsZeroVector(t *testing.T) {
	vec, err := New(8).Embed(context.Background(), "the a of !!")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(8).Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = New(8).EmbedBatch(ctx, []string{"text"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedBatch(t *testing.T) {
	s := New(32)
	vecs, err := s.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	single, _ := s.Embed(context.Background(), "beta")
	assert.Equal(t, single, vecs[1])
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
