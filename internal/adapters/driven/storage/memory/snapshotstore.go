package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.Snapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]*domain.Snapshot)}
}

// LoadSnapshot returns the stored snapshot, or an empty one for new roots.
func (s *SnapshotStore) LoadSnapshot(_ context.Context, root string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.snapshots[root]; ok {
		return snap.Clone(), nil
	}
	return domain.NewSnapshot(root), nil
}

// SaveSnapshot replaces the stored snapshot for snap.Root.
func (s *SnapshotStore) SaveSnapshot(_ context.Context, snap *domain.Snapshot) error {
	if snap == nil || snap.Root == "" {
		return domain.NewError(domain.KindInvalidInput, "snapshot without root")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Root] = snap.Clone()
	return nil
}

// ListRoots returns every root with a stored snapshot, sorted.
func (s *SnapshotStore) ListRoots(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.snapshots)), nil
}

// DeleteSnapshot forgets a root.
func (s *SnapshotStore) DeleteSnapshot(_ context.Context, root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, root)
	return nil
}
