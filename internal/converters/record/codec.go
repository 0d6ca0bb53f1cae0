// Package record implements the record (JSON) interchange format.
package record

import (
	"bytes"
	"encoding/json"

	"github.com/custodia-labs/docmirror/internal/converters/layout"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.Codec = (*Codec)(nil)

// Codec renders documents as indented JSON objects.
type Codec struct{}

// New creates a JSON codec.
func New() *Codec {
	return &Codec{}
}

// Format returns the record format.
func (c *Codec) Format() domain.Format { return domain.FormatRecord }

// Extension returns "json".
func (c *Codec) Extension() string { return "json" }

// Encode renders doc. encoding/json sorts map keys.
func (c *Codec) Encode(doc *domain.NormalizedDocument) ([]byte, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(layout.FromDocument(doc)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON record.
func (c *Codec) Decode(data []byte) (*domain.NormalizedDocument, error) {
	var r layout.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "decode record")
	}
	return r.Document()
}
