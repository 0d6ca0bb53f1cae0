package driven

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// DocumentStore persists normalised documents keyed by content hash.
// Backed by SQLite for the CLI and by memory in tests.
type DocumentStore interface {
	// SaveDocument stores or replaces a document.
	SaveDocument(ctx context.Context, doc *domain.NormalizedDocument) error

	// GetDocument retrieves a document by hash.
	// Returns domain.ErrNotFound if absent.
	GetDocument(ctx context.Context, hash string) (*domain.NormalizedDocument, error)

	// HasDocument reports whether a document with this hash is stored.
	HasDocument(ctx context.Context, hash string) (bool, error)

	// DeleteDocument removes a document. Deleting an absent hash is a no-op.
	DeleteDocument(ctx context.Context, hash string) error

	// ListDocuments returns all stored documents ordered by hash.
	ListDocuments(ctx context.Context) ([]domain.NormalizedDocument, error)
}

// SnapshotStore persists the last committed snapshot of each root.
type SnapshotStore interface {
	// LoadSnapshot returns the stored snapshot for root, or an empty
	// snapshot when the root has never been synchronised.
	LoadSnapshot(ctx context.Context, root string) (*domain.Snapshot, error)

	// SaveSnapshot replaces the stored snapshot for snap.Root.
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error

	// ListRoots returns every root with a stored snapshot, sorted.
	ListRoots(ctx context.Context) ([]string, error)

	// DeleteSnapshot forgets a root.
	DeleteSnapshot(ctx context.Context, root string) error
}
