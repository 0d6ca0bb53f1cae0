package domain

import (
	"maps"
	"slices"
	"time"
)

// SourceEntry describes one regular file observed under a synchronised root.
type SourceEntry struct {
	// Path is slash-separated and relative to the root. Unique per snapshot.
	Path string

	// Hash is the hex SHA-256 of the file content.
	Hash string

	// ModTime is the file modification time.
	ModTime time.Time

	// Size is the file size in bytes.
	Size int64

	// MIMEType is the resolved content type.
	MIMEType string
}

// Snapshot is the set of SourceEntries observed by one synchronisation pass.
type Snapshot struct {
	// Root is the absolute root directory the snapshot was taken from.
	Root string

	// OutputDir is the absolute directory the root is mirrored into.
	OutputDir string

	// Entries maps relative path to entry.
	Entries map[string]SourceEntry

	// TakenAt is when the pass that produced the snapshot finished.
	TakenAt time.Time
}

// NewSnapshot creates an empty snapshot for a root.
func NewSnapshot(root string) *Snapshot {
	return &Snapshot{
		Root:    root,
		Entries: make(map[string]SourceEntry),
	}
}

// Clone returns a copy whose entry map can be mutated independently.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Entries = maps.Clone(s.Entries)
	if out.Entries == nil {
		out.Entries = make(map[string]SourceEntry)
	}
	return &out
}

// Len returns the number of entries. A nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Get returns the entry for a path.
func (s *Snapshot) Get(path string) (SourceEntry, bool) {
	if s == nil {
		return SourceEntry{}, false
	}
	e, ok := s.Entries[path]
	return e, ok
}

// Paths returns all entry paths in lexical order.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.Entries))
}

// PathsForHash returns, in lexical order, every path whose content hash
// equals hash.
func (s *Snapshot) PathsForHash(hash string) []string {
	if s == nil {
		return nil
	}
	var paths []string
	for p, e := range s.Entries {
		if e.Hash == hash {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return paths
}

// HasHash reports whether any entry references hash.
func (s *Snapshot) HasHash(hash string) bool {
	if s == nil {
		return false
	}
	for _, e := range s.Entries {
		if e.Hash == hash {
			return true
		}
	}
	return false
}

// FileFailure records why a single file could not be synchronised.
type FileFailure struct {
	// Path is the relative path of the failing file.
	Path string `json:"path"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason"`

	// Kind is the error kind, when the failure was classified.
	Kind ErrorKind `json:"kind,omitempty"`
}

// Changeset is the set of changes detected by one synchronisation pass.
type Changeset struct {
	Added    []string
	Modified []string
	Removed  []string
	Failed   []FileFailure
}

// Sort orders every list lexically by path so changesets compare stably.
func (c *Changeset) Sort() {
	slices.Sort(c.Added)
	slices.Sort(c.Modified)
	slices.Sort(c.Removed)
	slices.SortFunc(c.Failed, func(a, b FileFailure) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
}

// IsEmpty reports whether the pass changed nothing and nothing failed.
func (c *Changeset) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0 && len(c.Failed) == 0
}

// Summary returns the ingestion-boundary view of the changeset.
func (c *Changeset) Summary() ChangesetSummary {
	failed := slices.Clone(c.Failed)
	if failed == nil {
		failed = []FileFailure{}
	}
	return ChangesetSummary{
		Added:    len(c.Added),
		Modified: len(c.Modified),
		Removed:  len(c.Removed),
		Failed:   failed,
	}
}

// ChangesetSummary is the count-based changeset returned at the ingestion
// boundary.
type ChangesetSummary struct {
	Added    int           `json:"added"`
	Modified int           `json:"modified"`
	Removed  int           `json:"removed"`
	Failed   []FileFailure `json:"failed"`
}
