package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService resolves document references against the stored
// snapshots and documents.
type DocumentService struct {
	docs      driven.DocumentStore
	snapshots driven.SnapshotStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docs driven.DocumentStore, snapshots driven.SnapshotStore) *DocumentService {
	return &DocumentService{docs: docs, snapshots: snapshots}
}

// Resolve finds a document by content hash or source path. A path may be
// relative to a synchronised root or absolute.
func (s *DocumentService) Resolve(ctx context.Context, ref string) (*driving.DocumentDetails, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "empty document reference")
	}

	snaps, err := s.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	if isContentHash(ref) {
		doc, err := s.docs.GetDocument(ctx, strings.ToLower(ref))
		if err == nil {
			return &driving.DocumentDetails{Document: doc, Paths: pathsFor(snaps, doc.Hash)}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	for _, snap := range snaps {
		rel, ok := relativeTo(snap.Root, ref)
		if !ok {
			continue
		}
		entry, found := snap.Get(rel)
		if !found {
			continue
		}
		doc, err := s.docs.GetDocument(ctx, entry.Hash)
		if err != nil {
			return nil, fmt.Errorf("document for %s: %w", ref, err)
		}
		return &driving.DocumentDetails{Document: doc, Paths: pathsFor(snaps, doc.Hash)}, nil
	}

	return nil, domain.NewError(domain.KindNotFound, "no document matches %q", ref)
}

// List returns every document referenced by a snapshot, ordered by its
// first path.
func (s *DocumentService) List(ctx context.Context) ([]driving.DocumentDetails, error) {
	snaps, err := s.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	byHash := make(map[string][]string)
	for _, snap := range snaps {
		for _, p := range snap.Paths() {
			e, _ := snap.Get(p)
			byHash[e.Hash] = append(byHash[e.Hash], p)
		}
	}

	out := make([]driving.DocumentDetails, 0, len(byHash))
	for hash, paths := range byHash {
		doc, err := s.docs.GetDocument(ctx, hash)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		slices.Sort(paths)
		out = append(out, driving.DocumentDetails{Document: doc, Paths: paths})
	}
	slices.SortFunc(out, func(a, b driving.DocumentDetails) int {
		return strings.Compare(a.Paths[0], b.Paths[0])
	})
	return out, nil
}

func (s *DocumentService) loadSnapshots(ctx context.Context) ([]*domain.Snapshot, error) {
	roots, err := s.snapshots.ListRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roots: %w", err)
	}
	snaps := make([]*domain.Snapshot, 0, len(roots))
	for _, root := range roots {
		snap, err := s.snapshots.LoadSnapshot(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", root, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func pathsFor(snaps []*domain.Snapshot, hash string) []string {
	var paths []string
	for _, snap := range snaps {
		paths = append(paths, snap.PathsForHash(hash)...)
	}
	slices.Sort(paths)
	return slices.Compact(paths)
}

// relativeTo maps ref onto a slash-separated path inside root.
func relativeTo(root, ref string) (string, bool) {
	if !filepath.IsAbs(ref) {
		return filepath.ToSlash(filepath.Clean(ref)), true
	}
	rel, err := filepath.Rel(root, ref)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func isContentHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
