package driving

import (
	"context"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

// Synchronizer mirrors source directories into output directories and
// keeps the index consistent with them.
type Synchronizer interface {
	// Sync reconciles root against previous, writing artifacts under out.
	// A nil previous snapshot means a first pass. The returned result is
	// valid even when err is a *domain.PartialSyncFailure or the context
	// was cancelled: it then reflects only committed work.
	Sync(ctx context.Context, root, out string, previous *domain.Snapshot) (*SyncResult, error)

	// SyncRoot loads the stored snapshot for root, syncs, and stores the
	// new snapshot.
	SyncRoot(ctx context.Context, root, out string) (*SyncResult, error)

	// SyncAll resyncs every root with a stored snapshot.
	SyncAll(ctx context.Context) (int, error)

	// Rehydrate rebuilds the in-memory index from stored snapshots and
	// documents.
	Rehydrate(ctx context.Context) error

	// Watch syncs root and then resyncs after every settled burst of
	// filesystem changes until ctx is cancelled.
	Watch(ctx context.Context, root, out string) error

	// Status returns the progress of the pass currently running, or of the
	// last pass.
	Status() SyncStatus
}

// SyncResult is the outcome of one synchronisation pass.
type SyncResult struct {
	Snapshot  *domain.Snapshot
	Changeset domain.Changeset
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Root identifies the directory being synchronised.
	Root string

	// Running indicates if sync is currently in progress.
	Running bool

	// DocumentsProcessed is the count of files processed.
	DocumentsProcessed int

	// ErrorCount is the number of errors encountered.
	ErrorCount int
}
