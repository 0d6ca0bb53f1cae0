// Package layout holds the field layout and value formatting shared by
// the interchange codecs.
package layout

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// TimeLayout is the timestamp layout used by every codec.
const TimeLayout = time.RFC3339Nano

// Record is the record-oriented document layout rendered by the JSON and
// YAML codecs. Field order is the output order.
type Record struct {
	Hash      string   `json:"hash" yaml:"hash"`
	Title     string   `json:"title" yaml:"title"`
	MIMEType  string   `json:"mimeType" yaml:"mimeType"`
	Format    string   `json:"format" yaml:"format"`
	Metadata  Metadata `json:"metadata" yaml:"metadata"`
	Entities  []Entity `json:"entities" yaml:"entities"`
	Summary   string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Embedding []Float  `json:"embedding,omitempty" yaml:"embedding,omitempty,flow"`
	Text      string   `json:"text" yaml:"text"`
}

// Metadata is the metadata block of a Record.
type Metadata struct {
	Author    string            `json:"author,omitempty" yaml:"author,omitempty"`
	CreatedAt string            `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	PageCount int               `json:"pageCount,omitempty" yaml:"pageCount,omitempty"`
	Language  string            `json:"language,omitempty" yaml:"language,omitempty"`
	Extra     map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Entity is one detected entity of a Record.
type Entity struct {
	Type       string `json:"type" yaml:"type"`
	Text       string `json:"text" yaml:"text"`
	Start      int    `json:"start" yaml:"start"`
	End        int    `json:"end" yaml:"end"`
	Confidence Float  `json:"confidence" yaml:"confidence"`
}

// FromDocument builds the record layout of doc.
func FromDocument(doc *domain.NormalizedDocument) Record {
	r := Record{
		Hash:     doc.Hash,
		Title:    doc.Title,
		MIMEType: doc.MIMEType,
		Format:   doc.Format,
		Metadata: Metadata{
			Author:    doc.Metadata.Author,
			CreatedAt: FormatTime(doc.Metadata.CreatedAt),
			PageCount: doc.Metadata.PageCount,
			Language:  doc.Metadata.Language,
		},
		Entities:  make([]Entity, 0, len(doc.Entities)),
		Summary:   doc.Summary,
		Embedding: FromVector(doc.Embedding),
		Text:      doc.Text,
	}
	if len(doc.Metadata.Extra) > 0 {
		r.Metadata.Extra = doc.Metadata.Clone().Extra
	}
	for _, e := range SortedEntities(doc.Entities) {
		r.Entities = append(r.Entities, Entity{
			Type:       string(e.Type),
			Text:       e.Text,
			Start:      e.Start,
			End:        e.End,
			Confidence: Float(e.Confidence),
		})
	}
	return r
}

// Document converts the record back into a document.
func (r Record) Document() (*domain.NormalizedDocument, error) {
	created, err := ParseTime(r.Metadata.CreatedAt)
	if err != nil {
		return nil, err
	}
	doc := &domain.NormalizedDocument{
		Hash:     r.Hash,
		Title:    r.Title,
		MIMEType: r.MIMEType,
		Format:   r.Format,
		Metadata: domain.Metadata{
			Author:    r.Metadata.Author,
			CreatedAt: created,
			PageCount: r.Metadata.PageCount,
			Language:  r.Metadata.Language,
			Extra:     r.Metadata.Extra,
		},
		Summary:   r.Summary,
		Embedding: ToVector(r.Embedding),
		Text:      r.Text,
	}
	for _, e := range r.Entities {
		doc.Entities = append(doc.Entities, domain.Entity{
			Type:       domain.EntityType(e.Type),
			Text:       e.Text,
			Start:      e.Start,
			End:        e.End,
			Confidence: float64(e.Confidence),
		})
	}
	return doc, nil
}

// SortedEntities returns a sorted copy of entities.
func SortedEntities(entities []domain.Entity) []domain.Entity {
	out := slices.Clone(entities)
	domain.SortEntities(out)
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FormatTime renders t in UTC, or "" for nil.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a FormatTime result.
func ParseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil, domain.WrapError(domain.KindCorruptInput, err, "timestamp %q", s)
	}
	t = t.UTC()
	return &t, nil
}

// FormatFloat renders f in its shortest 'g' form.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatVector renders an embedding as space-separated shortest float32
// values.
func FormatVector(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return strings.Join(parts, " ")
}

// ParseVector parses a FormatVector result.
func ParseVector(s string) ([]float32, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, domain.WrapError(domain.KindCorruptInput, err, "embedding value %q", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}
