package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmem "github.com/custodia-labs/docmirror/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/outputtree"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmirror/internal/connectors/filesystem"
	"github.com/custodia-labs/docmirror/internal/converters"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/normalisers"
)

type syncFixture struct {
	root      string
	out       string
	docs      *memory.DocumentStore
	snapshots *memory.SnapshotStore
	index     *indexmem.Index
	svc       *SyncService
}

func newSyncFixture(t *testing.T, registry driven.NormaliserRegistry) *syncFixture {
	t.Helper()
	return newSyncFixtureWith(t, registry, filesystem.NewWalker(), outputtree.Open)
}

func newSyncFixtureWith(
	t *testing.T, registry driven.NormaliserRegistry, walker driven.Walker, openTree driven.OutputTreeOpener,
) *syncFixture {
	t.Helper()
	base := t.TempDir()
	f := &syncFixture{
		root:      filepath.Join(base, "src"),
		out:       filepath.Join(base, "out"),
		docs:      memory.NewDocumentStore(),
		snapshots: memory.NewSnapshotStore(),
		index:     indexmem.New(),
	}
	require.NoError(t, os.MkdirAll(f.root, 0o755))
	if registry == nil {
		registry = normalisers.NewDefaultRegistry(nil)
	}
	f.svc = NewSyncService(
		walker,
		registry,
		f.docs,
		f.snapshots,
		f.index,
		converters.NewDefaultRegistry(),
		openTree,
		domain.SyncSettings{Workers: 4, DefaultFormat: domain.FormatRecord},
		nil,
	)
	return f
}

func (f *syncFixture) write(t *testing.T, rel, content string) {
	t.Helper()
	p := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func (f *syncFixture) remove(t *testing.T, rel string) {
	t.Helper()
	require.NoError(t, os.Remove(filepath.Join(f.root, filepath.FromSlash(rel))))
}

func (f *syncFixture) artifact(rel string) string {
	return filepath.Join(f.out, filepath.FromSlash(rel)+".json")
}

func (f *syncFixture) storedCount(t *testing.T) int {
	t.Helper()
	docs, err := f.docs.ListDocuments(context.Background())
	require.NoError(t, err)
	return len(docs)
}

// failingRegistry fails normalisation for selected paths.
type failingRegistry struct {
	driven.NormaliserRegistry
	fail map[string]bool
}

func (r *failingRegistry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.NormalizedDocument, error) {
	if r.fail[raw.URI] {
		return nil, domain.NewError(domain.KindCorruptInput, "%s: broken", raw.URI)
	}
	return r.NormaliserRegistry.Normalise(ctx, raw)
}

func TestSyncService_FirstPass(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.write(t, "a.txt", "The quarterly report covers revenue growth.")
	f.write(t, "data/b.csv", "name,city\nalice,paris\nbob,oslo\n")

	result, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "data/b.csv"}, result.Changeset.Added)
	assert.Empty(t, result.Changeset.Modified)
	assert.Empty(t, result.Changeset.Removed)
	assert.Equal(t, 2, result.Snapshot.Len())

	entry, ok := result.Snapshot.Get("data/b.csv")
	require.True(t, ok)
	assert.Equal(t, "text/csv", entry.MIMEType)
	assert.Len(t, entry.Hash, 64)

	assert.FileExists(t, f.artifact("a.txt"))
	assert.FileExists(t, f.artifact("data/b.csv"))
	assert.Equal(t, 2, f.index.Len())
	assert.Equal(t, 2, f.storedCount(t))

	hits := f.index.KeywordSearch("revenue")
	require.Len(t, hits, 1)
	assert.Equal(t, "a.txt", hits[0].Path)

	status := f.svc.Status()
	assert.False(t, status.Running)
	assert.Equal(t, 2, status.DocumentsProcessed)
}

func TestSyncService_Idempotent(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.write(t, "a.txt", "alpha beta")
	f.write(t, "b.csv", "k,v\n1,2\n")

	first, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)

	second, err := f.svc.Sync(context.Background(), f.root, f.out, first.Snapshot)
	require.NoError(t, err)

	assert.True(t, second.Changeset.IsEmpty())
	for _, p := range first.Snapshot.Paths() {
		a, _ := first.Snapshot.Get(p)
		b, _ := second.Snapshot.Get(p)
		assert.Equal(t, a.Hash, b.Hash, p)
	}
	assert.Equal(t, 2, f.index.Len())
	assert.Equal(t, 2, f.storedCount(t))
}

func TestSyncService_Modified(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.write(t, "a.txt", "original wording")
	first, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)
	oldEntry, _ := first.Snapshot.Get("a.txt")

	f.write(t, "a.txt", "replacement wording")
	second, err := f.svc.Sync(context.Background(), f.root, f.out, first.Snapshot)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, second.Changeset.Modified)
	newEntry, _ := second.Snapshot.Get("a.txt")
	assert.NotEqual(t, oldEntry.Hash, newEntry.Hash)

	assert.Empty(t, f.index.KeywordSearch("original"))
	assert.Len(t, f.index.KeywordSearch("replacement"), 1)

	has, err := f.docs.HasDocument(context.Background(), oldEntry.Hash)
	require.NoError(t, err)
	assert.False(t, has, "unreferenced document should be collected")
}

func TestSyncService_Removed(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.write(t, "a.txt", "keep me")
	f.write(t, "sub/b.txt", "drop me")
	first, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)

	f.remove(t, "sub/b.txt")
	second, err := f.svc.Sync(context.Background(), f.root, f.out, first.Snapshot)
	require.NoError(t, err)

	assert.Equal(t, []string{"sub/b.txt"}, second.Changeset.Removed)
	assert.NoFileExists(t, f.artifact("sub/b.txt"))
	assert.NoDirExists(t, filepath.Join(f.out, "sub"))
	assert.Equal(t, 1, f.index.Len())
	assert.Equal(t, 1, f.storedCount(t))
	_, ok := second.Snapshot.Get("sub/b.txt")
	assert.False(t, ok)
}

func TestSyncService_DuplicateContent(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.write(t, "a.txt", "same bytes")
	f.write(t, "copy/a.txt", "same bytes")

	first, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)

	a, _ := first.Snapshot.Get("a.txt")
	rec, ok := f.index.Get(a.Hash)
	require.True(t, ok)
	assert.Equal(t, []string{"a.txt", "copy/a.txt"}, rec.Paths)
	assert.Equal(t, 1, f.storedCount(t))

	f.remove(t, "copy/a.txt")
	_, err = f.svc.Sync(context.Background(), f.root, f.out, first.Snapshot)
	require.NoError(t, err)

	has, err := f.docs.HasDocument(context.Background(), a.Hash)
	require.NoError(t, err)
	assert.True(t, has, "document still referenced by a.txt")
	rec, ok = f.index.Get(a.Hash)
	require.True(t, ok)
	assert.Equal(t, []string{"a.txt"}, rec.Paths)
}

func TestSyncService_PartialFailure(t *testing.T) {
	registry := &failingRegistry{
		NormaliserRegistry: normalisers.NewDefaultRegistry(nil),
		fail:               map[string]bool{},
	}
	f := newSyncFixture(t, registry)
	f.write(t, "good.txt", "fine content")
	f.write(t, "known.txt", "first version")

	first, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)
	known, _ := first.Snapshot.Get("known.txt")

	f.write(t, "bad.txt", "will not parse")
	f.write(t, "known.txt", "second version")
	registry.fail["bad.txt"] = true
	registry.fail["known.txt"] = true

	second, err := f.svc.Sync(context.Background(), f.root, f.out, first.Snapshot)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialSyncFailure)

	var partial *domain.PartialSyncFailure
	require.True(t, errors.As(err, &partial))
	require.Len(t, partial.Failures, 2)
	assert.Equal(t, "bad.txt", partial.Failures[0].Path)
	assert.Equal(t, domain.KindCorruptInput, partial.Failures[0].Kind)

	_, ok := second.Snapshot.Get("bad.txt")
	assert.False(t, ok)
	kept, ok := second.Snapshot.Get("known.txt")
	require.True(t, ok, "failed known file keeps its prior entry")
	assert.Equal(t, known.Hash, kept.Hash)
	assert.Len(t, f.index.KeywordSearch("first"), 1)
	assert.FileExists(t, f.artifact("known.txt"))
}

func TestSyncService_CancelledSkipsRemovals(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.write(t, "a.txt", "present")

	previous := domain.NewSnapshot(f.root)
	previous.Entries["gone.txt"] = domain.SourceEntry{Path: "gone.txt", Hash: "deadbeef"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.svc.Sync(ctx, f.root, f.out, previous)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Changeset.Removed)
	_, ok := result.Snapshot.Get("gone.txt")
	assert.True(t, ok, "removals wait for a complete walk")
}

func TestSyncService_SkipsNestedOutput(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.out = filepath.Join(f.root, "mirror")
	f.write(t, "a.txt", "hello")

	first, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, first.Changeset.Added)

	second, err := f.svc.Sync(context.Background(), f.root, f.out, first.Snapshot)
	require.NoError(t, err)
	assert.True(t, second.Changeset.IsEmpty())
}

func TestSyncService_Validation(t *testing.T) {
	f := newSyncFixture(t, nil)

	_, err := f.svc.Sync(context.Background(), "", f.out, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Sync(context.Background(), f.root, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.SyncRoot(context.Background(), f.root, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSyncService_InProgress(t *testing.T) {
	f := newSyncFixture(t, nil)
	abs, err := filepath.Abs(f.root)
	require.NoError(t, err)

	require.True(t, f.svc.acquire(abs))
	defer f.svc.release(abs)

	_, err = f.svc.Sync(context.Background(), f.root, f.out, nil)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
}

func TestSyncService_SyncRootAndAll(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.write(t, "a.txt", "stored snapshot")

	_, err := f.svc.SyncRoot(context.Background(), f.root, f.out)
	require.NoError(t, err)

	stored, err := f.snapshots.LoadSnapshot(context.Background(), f.root)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Len())
	absOut, _ := filepath.Abs(f.out)
	assert.Equal(t, absOut, stored.OutputDir)

	f.write(t, "b.txt", "added later")
	n, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, f.artifact("b.txt"))

	stored, err = f.snapshots.LoadSnapshot(context.Background(), f.root)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Len())
}

func TestSyncService_Rehydrate(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.write(t, "a.txt", "rehydrated words")
	f.write(t, "b.txt", "more words")
	_, err := f.svc.SyncRoot(context.Background(), f.root, f.out)
	require.NoError(t, err)

	fresh := indexmem.New()
	svc := NewSyncService(filesystem.NewWalker(), normalisers.NewDefaultRegistry(nil),
		f.docs, f.snapshots, fresh, converters.NewDefaultRegistry(), outputtree.Open,
		domain.SyncSettings{}, nil)

	require.NoError(t, svc.Rehydrate(context.Background()))
	assert.Equal(t, 2, fresh.Len())
	assert.Len(t, fresh.KeywordSearch("rehydrated"), 1)
}

func TestSyncService_WatchRequiresWatcher(t *testing.T) {
	f := newSyncFixture(t, nil)
	err := f.svc.Watch(context.Background(), f.root, f.out)
	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
}
