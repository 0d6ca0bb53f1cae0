package driven

import (
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// IndexDocument is the unit published to the index: a normalised document
// reachable at one path.
type IndexDocument struct {
	Doc     *domain.NormalizedDocument
	Path    string
	ModTime time.Time
}

// IndexRecord is the index's view of one document: the document and every
// path it is reachable from.
type IndexRecord struct {
	Doc     *domain.NormalizedDocument
	Paths   []string
	ModTime time.Time
}

// DocumentIndex maintains the keyword, filename and semantic indexes.
//
// Implementations must be safe for concurrent use: updates on different
// hashes proceed in parallel, updates on the same hash are serialised,
// and queries never observe a partially applied update.
type DocumentIndex interface {
	// Upsert publishes a document at a path. Upserting an identical
	// document is a no-op. Returns true when the index changed.
	Upsert(doc IndexDocument) bool

	// Detach removes one path from a document. The document is removed
	// entirely once no path references it. Returns true when the index
	// changed.
	Detach(hash, path string) bool

	// Remove drops a document and all its postings. Removing an absent
	// hash is a no-op.
	Remove(hash string) bool

	// KeywordSearch scores documents against the analysed query, best
	// first.
	KeywordSearch(query string) []domain.SearchHit

	// FilenameSearch scores documents by how well a path fragment matches
	// the query, best first.
	FilenameSearch(query string) []domain.SearchHit

	// VectorSearch ranks documents by cosine similarity to vec, best first.
	// Returns domain.ErrIndexUnavailable when no vectors are indexed or the
	// dimension does not match.
	VectorSearch(vec []float32) ([]domain.SearchHit, error)

	// Get returns the record for a hash.
	Get(hash string) (IndexRecord, bool)

	// Len returns the number of indexed documents.
	Len() int

	// Dimensions returns the fixed vector dimension, or 0 before the first
	// vector is indexed.
	Dimensions() int
}
