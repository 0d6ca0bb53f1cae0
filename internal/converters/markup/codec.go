// Package markup implements the structured-markup (XML) interchange format.
package markup

import (
	"bytes"
	"encoding/xml"
	"strconv"

	"github.com/custodia-labs/docmirror/internal/converters/layout"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.Codec = (*Codec)(nil)

type xmlDocument struct {
	XMLName   xml.Name     `xml:"document"`
	Hash      string       `xml:"hash,attr"`
	MIMEType  string       `xml:"mimeType,attr"`
	Format    string       `xml:"format,attr"`
	Title     string       `xml:"title"`
	Metadata  xmlMetadata  `xml:"metadata"`
	Entities  []xmlEntity  `xml:"entities>entity"`
	Summary   string       `xml:"summary,omitempty"`
	Embedding *xmlEmbedded `xml:"embedding,omitempty"`
	Text      string       `xml:"text"`
}

type xmlMetadata struct {
	Author    string     `xml:"author,omitempty"`
	CreatedAt string     `xml:"createdAt,omitempty"`
	PageCount int        `xml:"pageCount,omitempty"`
	Language  string     `xml:"language,omitempty"`
	Extra     []xmlExtra `xml:"extra"`
}

type xmlExtra struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type xmlEntity struct {
	Type       string `xml:"type,attr"`
	Start      int    `xml:"start,attr"`
	End        int    `xml:"end,attr"`
	Confidence string `xml:"confidence,attr"`
	Text       string `xml:",chardata"`
}

type xmlEmbedded struct {
	Dimensions int    `xml:"dimensions,attr"`
	Values     string `xml:",chardata"`
}

// Codec renders documents as XML.
type Codec struct{}

// New creates an XML codec.
func New() *Codec {
	return &Codec{}
}

// Format returns the structured-markup format.
func (c *Codec) Format() domain.Format { return domain.FormatMarkup }

// Extension returns "xml".
func (c *Codec) Extension() string { return "xml" }

// Encode renders doc with an XML declaration. Characters that XML 1.0
// cannot carry are replaced by U+FFFD.
func (c *Codec) Encode(doc *domain.NormalizedDocument) ([]byte, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	x := xmlDocument{
		Hash:     doc.Hash,
		MIMEType: doc.MIMEType,
		Format:   doc.Format,
		Title:    doc.Title,
		Metadata: xmlMetadata{
			Author:    doc.Metadata.Author,
			CreatedAt: layout.FormatTime(doc.Metadata.CreatedAt),
			PageCount: doc.Metadata.PageCount,
			Language:  doc.Metadata.Language,
		},
		Summary: doc.Summary,
		Text:    doc.Text,
	}
	for _, k := range layout.SortedKeys(doc.Metadata.Extra) {
		x.Metadata.Extra = append(x.Metadata.Extra, xmlExtra{Key: k, Value: doc.Metadata.Extra[k]})
	}
	for _, e := range layout.SortedEntities(doc.Entities) {
		x.Entities = append(x.Entities, xmlEntity{
			Type:       string(e.Type),
			Start:      e.Start,
			End:        e.End,
			Confidence: layout.FormatFloat(e.Confidence),
			Text:       e.Text,
		})
	}
	if len(doc.Embedding) > 0 {
		x.Embedding = &xmlEmbedded{Dimensions: len(doc.Embedding), Values: layout.FormatVector(doc.Embedding)}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(x); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Decode parses an XML document.
func (c *Codec) Decode(data []byte) (*domain.NormalizedDocument, error) {
	var x xmlDocument
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "decode markup")
	}

	created, err := layout.ParseTime(x.Metadata.CreatedAt)
	if err != nil {
		return nil, err
	}
	doc := &domain.NormalizedDocument{
		Hash:     x.Hash,
		Title:    x.Title,
		MIMEType: x.MIMEType,
		Format:   x.Format,
		Metadata: domain.Metadata{
			Author:    x.Metadata.Author,
			CreatedAt: created,
			PageCount: x.Metadata.PageCount,
			Language:  x.Metadata.Language,
		},
		Summary: x.Summary,
		Text:    x.Text,
	}
	for _, e := range x.Metadata.Extra {
		doc.Metadata.SetExtra(e.Key, e.Value)
	}
	for _, e := range x.Entities {
		conf, err := strconv.ParseFloat(e.Confidence, 64)
		if err != nil {
			return nil, domain.WrapError(domain.KindCorruptInput, err, "entity confidence %q", e.Confidence)
		}
		doc.Entities = append(doc.Entities, domain.Entity{
			Type:       domain.EntityType(e.Type),
			Text:       e.Text,
			Start:      e.Start,
			End:        e.End,
			Confidence: conf,
		})
	}
	if x.Embedding != nil {
		if doc.Embedding, err = layout.ParseVector(x.Embedding.Values); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
