package entities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestEnricher_Name(t *testing.T) {
	assert.Equal(t, "entities", New().Name())
}

func TestEnricher_ReplacesEntities(t *testing.T) {
	doc := &domain.NormalizedDocument{
		Text:     "write to ops@example.com today",
		Entities: []domain.Entity{{Type: domain.EntityURL, Text: "stale"}},
	}

	require.NoError(t, New().Enrich(context.Background(), doc))

	require.NotEmpty(t, doc.Entities)
	assert.Equal(t, domain.EntityEmail, doc.Entities[0].Type)
	assert.Equal(t, "ops@example.com", doc.Entities[0].Text)
	assert.Equal(t, "ops@example.com", doc.Text[doc.Entities[0].Start:doc.Entities[0].End])
}

func TestEnricher_EmptyText(t *testing.T) {
	doc := &domain.NormalizedDocument{}
	require.NoError(t, New().Enrich(context.Background(), doc))
	assert.Empty(t, doc.Entities)
}
