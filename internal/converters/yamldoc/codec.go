// Package yamldoc implements the YAML rendering of the record layout.
package yamldoc

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docmirror/internal/converters/layout"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.Codec = (*Codec)(nil)

// Codec renders documents as YAML mappings.
type Codec struct{}

// New creates a YAML codec.
func New() *Codec {
	return &Codec{}
}

// Format returns the YAML format.
func (c *Codec) Format() domain.Format { return domain.FormatYAML }

// Extension returns "yaml".
func (c *Codec) Extension() string { return "yaml" }

// Encode renders doc. yaml.v3 sorts map keys.
func (c *Codec) Encode(doc *domain.NormalizedDocument) ([]byte, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(layout.FromDocument(doc)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a YAML record.
func (c *Codec) Decode(data []byte) (*domain.NormalizedDocument, error) {
	var r layout.Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "decode yaml")
	}
	return r.Document()
}
