package domain

import (
	"maps"
	"slices"
	"time"
)

// NormalizedDocument is the canonical structured record extracted from a
// source file. It is keyed by the content hash of the bytes it was
// extracted from, so renaming a file never requires re-normalisation.
//
// Documents are immutable once normalised and are shared read-only between
// the synchroniser, the index and the conversion adapter.
type NormalizedDocument struct {
	// Hash is the hex SHA-256 of the source bytes.
	Hash string

	// Title is a human-readable title (first heading, document property,
	// or a cleaned-up filename).
	Title string

	// Text is the extracted plain text.
	Text string

	// MIMEType is the resolved content type the document was extracted as.
	MIMEType string

	// Format names the extraction strategy that produced the document.
	Format string

	// Metadata holds the well-known and extra metadata fields.
	Metadata Metadata

	// Entities are the detected entities, ordered by span.
	Entities []Entity

	// Summary is an optional capability-provided summary.
	Summary string

	// Embedding is the capability-provided semantic vector, if any.
	Embedding []float32

	// NormalizedAt is when the document was extracted.
	NormalizedAt time.Time
}

// Metadata holds extracted document metadata.
type Metadata struct {
	// Author is the declared author, if the format carries one.
	Author string

	// CreatedAt is the declared creation time, if the format carries one.
	CreatedAt *time.Time

	// PageCount is the number of pages (page-oriented formats) or sheets.
	PageCount int

	// Language is the detected ISO 639-1 language code.
	Language string

	// Extra contains format-specific key-value pairs.
	Extra map[string]string
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	out := m
	if m.CreatedAt != nil {
		t := *m.CreatedAt
		out.CreatedAt = &t
	}
	if m.Extra != nil {
		out.Extra = maps.Clone(m.Extra)
	}
	return out
}

// SetExtra sets an extra metadata field, allocating the map on first use.
func (m *Metadata) SetExtra(key, value string) {
	if m.Extra == nil {
		m.Extra = make(map[string]string)
	}
	m.Extra[key] = value
}

// EntityType classifies a detected entity.
type EntityType string

// Detected entity types.
const (
	EntityEmail  EntityType = "email"
	EntityURL    EntityType = "url"
	EntityDate   EntityType = "date"
	EntityMoney  EntityType = "money"
	EntityPhone  EntityType = "phone"
	EntityNumber EntityType = "number"
)

// Entity is a span of the extracted text recognised as a typed value.
type Entity struct {
	// Type is the entity class.
	Type EntityType

	// Text is the matched text.
	Text string

	// Start and End are byte offsets into the document text.
	Start int
	End   int

	// Confidence is the detector's confidence in [0, 1].
	Confidence float64
}

// SortEntities orders entities by span, then by type.
func SortEntities(entities []Entity) {
	slices.SortStableFunc(entities, func(a, b Entity) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		if a.End != b.End {
			return a.End - b.End
		}
		switch {
		case a.Type < b.Type:
			return -1
		case a.Type > b.Type:
			return 1
		}
		return 0
	})
}

// Clone returns a deep copy of the document.
func (d *NormalizedDocument) Clone() *NormalizedDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.Metadata = d.Metadata.Clone()
	out.Entities = slices.Clone(d.Entities)
	out.Embedding = slices.Clone(d.Embedding)
	return &out
}

// Degrade records that an optional enrichment step did not complete.
// Degraded steps are listed in Metadata.Extra["degraded"].
func (d *NormalizedDocument) Degrade(step string) {
	cur := d.Metadata.Extra["degraded"]
	if cur == "" {
		d.Metadata.SetExtra("degraded", step)
		return
	}
	d.Metadata.SetExtra("degraded", cur+","+step)
}
