package driving

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// ResultActionService provides actions on search results.
type ResultActionService interface {
	// Locate returns the absolute path of the result's source file.
	Locate(ctx context.Context, result *domain.SearchResult) (string, error)

	// CopyToClipboard copies the result's source path to the clipboard.
	CopyToClipboard(ctx context.Context, result *domain.SearchResult) error

	// OpenDocument opens the source file in the default application.
	OpenDocument(ctx context.Context, result *domain.SearchResult) error
}
