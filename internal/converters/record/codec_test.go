package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestCodec_Encode(t *testing.T) {
	doc := &domain.NormalizedDocument{
		Hash:  "abc",
		Title: "a <b> & c",
		Text:  "body",
		Metadata: domain.Metadata{
			Extra: map[string]string{"b": "2", "a": "1"},
		},
	}

	data, err := New().Encode(doc)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"title": "a <b> & c"`)
	assert.Less(t, strings.Index(out, `"hash"`), strings.Index(out, `"title"`))
	assert.Less(t, strings.Index(out, `"a": "1"`), strings.Index(out, `"b": "2"`))
	assert.Contains(t, out, `"entities": []`)
}

func TestCodec_Deterministic(t *testing.T) {
	doc := &domain.NormalizedDocument{
		Hash:     "abc",
		Metadata: domain.Metadata{Extra: map[string]string{"x": "1", "y": "2", "z": "3"}},
	}
	first, err := New().Encode(doc)
	require.NoError(t, err)
	for range 5 {
		again, err := New().Encode(doc)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCodec_EncodeNil(t *testing.T) {
	_, err := New().Encode(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCodec_DecodeCorrupt(t *testing.T) {
	_, err := New().Decode([]byte("{"))
	assert.ErrorIs(t, err, domain.ErrCorruptInput)

	_, err = New().Decode([]byte(`{"hash":"a","metadata":{"createdAt":"yesterday"}}`))
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestCodec_FormatAndExtension(t *testing.T) {
	c := New()
	assert.Equal(t, domain.FormatRecord, c.Format())
	assert.Equal(t, "json", c.Extension())
}
