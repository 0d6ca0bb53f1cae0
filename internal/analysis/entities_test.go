package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestDetectEntities(t *testing.T) {
	text := "Mail ops@example.com by 2024-03-15 about $1,200.50, see https://example.com/x or call 555-123-4567. Ref 42."
	entities := DetectEntities(text)

	byType := map[domain.EntityType]string{}
	for _, e := range entities {
		assert.Equal(t, e.Text, text[e.Start:e.End])
		byType[e.Type] = e.Text
	}

	assert.Equal(t, "ops@example.com", byType[domain.EntityEmail])
	assert.Equal(t, "2024-03-15", byType[domain.EntityDate])
	assert.Equal(t, "$1,200.50", byType[domain.EntityMoney])
	assert.Equal(t, "https://example.com/x", byType[domain.EntityURL])
	assert.Equal(t, "555-123-4567", byType[domain.EntityPhone])
	assert.Equal(t, "42", byType[domain.EntityNumber])
}

func TestDetectEntities_NoOverlapAndOrdered(t *testing.T) {
	entities := DetectEntities("On 2024-01-02 paid €300 and 12 more on 3/4/2025.")
	require.NotEmpty(t, entities)
	for i := 1; i < len(entities); i++ {
		assert.LessOrEqual(t, entities[i-1].End, entities[i].Start)
	}
}

func TestDetectEntities_Empty(t *testing.T) {
	assert.Nil(t, DetectEntities(""))
	assert.Empty(t, DetectEntities("no values here"))
}
