package driving

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// DocumentService looks up normalised documents.
type DocumentService interface {
	// Resolve finds a document by content hash or indexed source path.
	// Returns domain.ErrNotFound when neither matches.
	Resolve(ctx context.Context, ref string) (*DocumentDetails, error)

	// List returns every indexed document ordered by path.
	List(ctx context.Context) ([]DocumentDetails, error)
}

// DocumentDetails is a document together with where it lives.
type DocumentDetails struct {
	// Document is the normalised record.
	Document *domain.NormalizedDocument

	// Paths lists every source path with this content.
	Paths []string
}
