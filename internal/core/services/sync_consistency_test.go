package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/outputtree"
	"github.com/custodia-labs/docmirror/internal/connectors/filesystem"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/normalisers"
	"github.com/custodia-labs/docmirror/internal/postprocessors"
)

// unreadableWalker hides everything under dir and reports dir as
// unreadable, or fails the whole walk with rootErr.
type unreadableWalker struct {
	*filesystem.Walker
	dir     string
	rootErr error
}

func (w *unreadableWalker) Walk(ctx context.Context, root string, opts driven.WalkOptions,
	fn func(driven.WalkedFile) error, onError func(string, error)) error {
	if w.rootErr != nil {
		return w.rootErr
	}
	reported := false
	return w.Walker.Walk(ctx, root, opts, func(f driven.WalkedFile) error {
		if strings.HasPrefix(f.Path, w.dir+"/") {
			if !reported {
				reported = true
				onError(w.dir, fmt.Errorf("open %s: %w", w.dir, fs.ErrPermission))
			}
			return nil
		}
		return fn(f)
	}, onError)
}

// slowTree delays artifact writes for one path.
type slowTree struct {
	driven.OutputTree
	slow  string
	delay time.Duration
}

func (t *slowTree) Write(relPath, ext string, data []byte) (string, error) {
	if relPath == t.slow {
		time.Sleep(t.delay)
	}
	return t.OutputTree.Write(relPath, ext, data)
}

func embeddingRegistry(t *testing.T, embedder driven.EmbeddingService) driven.NormaliserRegistry {
	t.Helper()
	pipeline, err := postprocessors.BuildDefault(postprocessors.Capabilities{Embedding: embedder}, nil)
	require.NoError(t, err)
	return normalisers.NewDefaultRegistry(nil, normalisers.WithPipeline(pipeline))
}

func paths(results []domain.SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Path)
	}
	return out
}

func TestSyncService_AppleBananaCherry(t *testing.T) {
	embedder := hashing.New(64)
	f := newSyncFixture(t, embeddingRegistry(t, embedder))
	search := NewSearchService(f.index, embedder, domain.SearchSettings{})
	ctx := context.Background()

	f.write(t, "a.txt", "apple banana")
	f.write(t, "b.csv", "banana cherry")
	older := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(f.root, "b.csv"), older, older))

	first, err := f.svc.Sync(ctx, f.root, f.out, nil)
	require.NoError(t, err)

	banana, err := search.Search(ctx, domain.SearchQuery{Query: "banana", Mode: domain.SearchModeKeyword})
	require.NoError(t, err)
	require.Len(t, banana, 2)
	// Equal term frequency and document frequency: the newer file wins the tie.
	assert.Equal(t, []string{"a.txt", "b.csv"}, paths(banana))
	assert.InDelta(t, banana[0].Score, banana[1].Score, 1e-9)

	for _, mode := range domain.AllSearchModes() {
		query := "cherry"
		if mode == domain.SearchModeFilename {
			query = "b.csv"
		}
		before, err := search.Search(ctx, domain.SearchQuery{Query: query, Mode: mode})
		require.NoError(t, err, mode)
		assert.Contains(t, paths(before), "b.csv", mode)
	}

	f.remove(t, "b.csv")
	second, err := f.svc.Sync(ctx, f.root, f.out, first.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.csv"}, second.Changeset.Removed)

	cherry, err := search.Search(ctx, domain.SearchQuery{Query: "cherry", Mode: domain.SearchModeKeyword})
	require.NoError(t, err)
	assert.Empty(t, cherry)

	for _, mode := range domain.AllSearchModes() {
		query := "cherry"
		if mode == domain.SearchModeFilename {
			query = "b.csv"
		}
		after, err := search.Search(ctx, domain.SearchQuery{Query: query, Mode: mode})
		require.NoError(t, err, mode)
		assert.NotContains(t, paths(after), "b.csv", mode)
	}
}

func TestSyncService_UnreadableDirectoryKeepsEntries(t *testing.T) {
	walker := &unreadableWalker{Walker: filesystem.NewWalker()}
	f := newSyncFixtureWith(t, nil, walker, outputtree.Open)
	f.write(t, "a.txt", "apple banana")
	f.write(t, "data/b.csv", "banana cherry")

	first, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)
	kept, _ := first.Snapshot.Get("data/b.csv")

	walker.dir = "data"
	second, err := f.svc.Sync(context.Background(), f.root, f.out, first.Snapshot)

	var partial *domain.PartialSyncFailure
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, "data", partial.Failures[0].Path)
	assert.Empty(t, second.Changeset.Removed)

	entry, ok := second.Snapshot.Get("data/b.csv")
	require.True(t, ok)
	assert.Equal(t, kept.Hash, entry.Hash)
	assert.Len(t, f.index.KeywordSearch("cherry"), 1)
	assert.FileExists(t, f.artifact("data/b.csv"))
	has, err := f.docs.HasDocument(context.Background(), kept.Hash)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSyncService_UnreadableRootFailsPass(t *testing.T) {
	walker := &unreadableWalker{Walker: filesystem.NewWalker()}
	f := newSyncFixtureWith(t, nil, walker, outputtree.Open)
	f.write(t, "a.txt", "apple banana")

	first, err := f.svc.Sync(context.Background(), f.root, f.out, nil)
	require.NoError(t, err)

	walker.rootErr = fmt.Errorf("read root: %w", fs.ErrPermission)
	second, err := f.svc.Sync(context.Background(), f.root, f.out, first.Snapshot)

	require.ErrorIs(t, err, fs.ErrPermission)
	require.NotNil(t, second)
	assert.Empty(t, second.Changeset.Removed)
	_, ok := second.Snapshot.Get("a.txt")
	assert.True(t, ok)
	assert.Equal(t, 1, f.index.Len())
	assert.Equal(t, 1, f.storedCount(t))
}

func TestSyncService_CopyThenEditKeepsSharedDocument(t *testing.T) {
	opener := func(dir string) (driven.OutputTree, error) {
		tree, err := outputtree.Open(dir)
		if err != nil {
			return nil, err
		}
		return &slowTree{OutputTree: tree, slow: "c.txt", delay: 200 * time.Millisecond}, nil
	}
	f := newSyncFixtureWith(t, nil, filesystem.NewWalker(), opener)
	ctx := context.Background()

	f.write(t, "a.txt", "original wording")
	first, err := f.svc.Sync(ctx, f.root, f.out, nil)
	require.NoError(t, err)
	original, _ := first.Snapshot.Get("a.txt")

	f.write(t, "c.txt", "original wording")
	f.write(t, "a.txt", "edited wording")
	second, err := f.svc.Sync(ctx, f.root, f.out, first.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.txt"}, second.Changeset.Added)
	assert.Equal(t, []string{"a.txt"}, second.Changeset.Modified)

	copied, ok := second.Snapshot.Get("c.txt")
	require.True(t, ok)
	assert.Equal(t, original.Hash, copied.Hash)

	has, err := f.docs.HasDocument(ctx, original.Hash)
	require.NoError(t, err)
	assert.True(t, has, "document still referenced by c.txt")

	rec, ok := f.index.Get(original.Hash)
	require.True(t, ok)
	assert.Equal(t, []string{"c.txt"}, rec.Paths)
}
