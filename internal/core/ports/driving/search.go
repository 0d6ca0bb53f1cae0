package driving

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search runs a single-mode query. An empty index or empty query
	// yields an empty slice, never an error.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}
