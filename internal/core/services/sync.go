package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.Synchronizer = (*SyncService)(nil)

// SyncService mirrors source directories into output trees and keeps the
// document store and index consistent with them.
type SyncService struct {
	walker    driven.Walker
	registry  driven.NormaliserRegistry
	docs      driven.DocumentStore
	snapshots driven.SnapshotStore
	index     driven.DocumentIndex
	converter driven.Converter
	openTree  driven.OutputTreeOpener
	settings  domain.SyncSettings
	watcher   driven.Watcher
	now       func() time.Time

	// Roots with a pass in flight.
	runMu   sync.Mutex
	running map[string]bool

	mu     sync.RWMutex
	status driving.SyncStatus
}

// NewSyncService creates a synchroniser. The watcher is optional and only
// needed by Watch.
func NewSyncService(
	walker driven.Walker,
	registry driven.NormaliserRegistry,
	docs driven.DocumentStore,
	snapshots driven.SnapshotStore,
	index driven.DocumentIndex,
	converter driven.Converter,
	openTree driven.OutputTreeOpener,
	settings domain.SyncSettings,
	watcher driven.Watcher,
) *SyncService {
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	if settings.DefaultFormat == "" {
		settings.DefaultFormat = domain.FormatRecord
	}
	return &SyncService{
		walker:    walker,
		registry:  registry,
		docs:      docs,
		snapshots: snapshots,
		index:     index,
		converter: converter,
		openTree:  openTree,
		settings:  settings,
		watcher:   watcher,
		now:       time.Now,
		running:   make(map[string]bool),
	}
}

// pass holds the state of one synchronisation pass. Workers write to it
// concurrently.
type pass struct {
	root     string
	previous *domain.Snapshot
	tree     driven.OutputTree
	ext      string

	mu        sync.Mutex
	next      *domain.Snapshot
	seen      map[string]bool
	changeset domain.Changeset

	// Paths the walker could not read. Previous entries at or below them
	// are kept as they were.
	unreadable []string

	// Hashes detached during the pass, collected once workers drain.
	released map[string]bool
}

// shielded reports whether path lies at or below an unreadable path.
func (p *pass) shielded(path string) bool {
	for _, u := range p.unreadable {
		if u == "" || path == u || strings.HasPrefix(path, u+"/") {
			return true
		}
	}
	return false
}

func (p *pass) fail(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changeset.Failed = append(p.changeset.Failed, domain.FileFailure{
		Path:   path,
		Reason: err.Error(),
		Kind:   domain.KindOf(err),
	})
}

// Sync reconciles root against previous and writes artifacts under out.
func (s *SyncService) Sync(
	ctx context.Context, root, out string, previous *domain.Snapshot,
) (*driving.SyncResult, error) {
	if root == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "root is required")
	}
	if out == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "output directory is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, err, "resolve root %s", root)
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, err, "resolve output %s", out)
	}

	if !s.acquire(absRoot) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSyncInProgress, absRoot)
	}
	defer s.release(absRoot)

	tree, err := s.openTree(absOut)
	if err != nil {
		return nil, err
	}
	ext, err := s.converter.Extension(s.settings.DefaultFormat)
	if err != nil {
		return nil, err
	}

	if previous == nil {
		previous = domain.NewSnapshot(absRoot)
	}
	next := previous.Clone()
	next.Root = absRoot
	next.OutputDir = tree.Root()

	p := &pass{
		root:     absRoot,
		previous: previous,
		tree:     tree,
		ext:      ext,
		next:     next,
		seen:     make(map[string]bool),
		released: make(map[string]bool),
	}

	s.startStatus(absRoot)
	defer s.finishStatus()
	logger.Info("sync %s -> %s", absRoot, tree.Root())

	walkErr := s.walk(ctx, p)

	// Removals are only safe once every present file has been seen.
	if walkErr == nil {
		s.reconcileRemovals(p)
	}
	s.collectGarbage(ctx, p)

	p.next.TakenAt = s.now().UTC()
	p.changeset.Sort()
	result := &driving.SyncResult{Snapshot: p.next, Changeset: p.changeset}

	logger.Info("sync %s: %d added, %d modified, %d removed, %d failed",
		absRoot, len(p.changeset.Added), len(p.changeset.Modified),
		len(p.changeset.Removed), len(p.changeset.Failed))

	if walkErr != nil {
		return result, walkErr
	}
	if len(p.changeset.Failed) > 0 {
		return result, &domain.PartialSyncFailure{Failures: p.changeset.Failed}
	}
	return result, nil
}

func (s *SyncService) walk(ctx context.Context, p *pass) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Workers)

	opts := driven.WalkOptions{
		IncludeHidden: s.settings.IncludeHidden,
		Exclude:       s.settings.Exclude,
		SkipDirs:      []string{p.tree.Root()},
		MaxFileSize:   s.settings.MaxFileSize,
	}

	onError := func(path string, err error) {
		p.mu.Lock()
		p.unreadable = append(p.unreadable, path)
		p.mu.Unlock()
		s.countError()
		p.fail(path, err)
	}

	err := s.walker.Walk(gctx, p.root, opts, func(f driven.WalkedFile) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		p.mu.Lock()
		p.seen[f.Path] = true
		p.mu.Unlock()
		g.Go(func() error {
			s.processFile(gctx, p, f)
			return nil
		})
		return nil
	}, onError)

	// Workers never return errors, so Wait only drains.
	_ = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return err
}

func (s *SyncService) processFile(ctx context.Context, p *pass, f driven.WalkedFile) {
	if ctx.Err() != nil {
		return
	}

	content, err := s.walker.Read(ctx, f, s.settings.MaxFileSize)
	if err != nil {
		s.countError()
		p.fail(f.Path, err)
		return
	}
	hash := hashContent(content)

	prior, known := p.previous.Get(f.Path)
	if known && prior.Hash == hash {
		s.refresh(ctx, p, f, prior)
		return
	}

	doc, err := s.document(ctx, f, hash, content)
	if err != nil {
		if ctx.Err() == nil {
			s.countError()
			p.fail(f.Path, err)
		}
		return
	}

	if err := s.publish(ctx, p, f, doc); err != nil {
		s.countError()
		p.fail(f.Path, err)
		return
	}

	if known {
		s.releaseHash(p, prior.Hash, f.Path)
	}

	p.mu.Lock()
	p.next.Entries[f.Path] = domain.SourceEntry{
		Path:     f.Path,
		Hash:     hash,
		ModTime:  f.ModTime,
		Size:     f.Size,
		MIMEType: doc.MIMEType,
	}
	if known {
		p.changeset.Modified = append(p.changeset.Modified, f.Path)
	} else {
		p.changeset.Added = append(p.changeset.Added, f.Path)
	}
	p.mu.Unlock()
	s.countProcessed()
}

// refresh handles unchanged content. The entry keeps its hash; only the
// observed stat fields move. A record missing from the index (a fresh
// process that has not rehydrated) is republished from the store.
func (s *SyncService) refresh(ctx context.Context, p *pass, f driven.WalkedFile, prior domain.SourceEntry) {
	if rec, ok := s.index.Get(prior.Hash); !ok || !slices.Contains(rec.Paths, f.Path) {
		doc, err := s.docs.GetDocument(ctx, prior.Hash)
		if err == nil {
			s.index.Upsert(driven.IndexDocument{Doc: doc, Path: f.Path, ModTime: f.ModTime})
		} else {
			logger.Debug("refresh %s: %v", f.Path, err)
		}
	}

	p.mu.Lock()
	prior.ModTime = f.ModTime
	prior.Size = f.Size
	p.next.Entries[f.Path] = prior
	p.mu.Unlock()
}

// document returns the normalised document for content, reusing a stored
// one when the hash is already known.
func (s *SyncService) document(
	ctx context.Context, f driven.WalkedFile, hash string, content []byte,
) (*domain.NormalizedDocument, error) {
	if ok, err := s.docs.HasDocument(ctx, hash); err == nil && ok {
		doc, err := s.docs.GetDocument(ctx, hash)
		if err == nil {
			return doc, nil
		}
	}

	doc, err := s.registry.Normalise(ctx, &domain.RawDocument{
		URI:          f.Path,
		DeclaredMIME: f.DeclaredMIME,
		Content:      content,
		Hash:         hash,
	})
	if err != nil {
		return nil, err
	}
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// publish writes the artifact and then makes the document searchable at
// its path.
func (s *SyncService) publish(ctx context.Context, p *pass, f driven.WalkedFile, doc *domain.NormalizedDocument) error {
	data, err := s.converter.Convert(doc, s.settings.DefaultFormat)
	if err != nil {
		return err
	}
	if _, err := p.tree.Write(f.Path, p.ext, data); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	s.index.Upsert(driven.IndexDocument{Doc: doc, Path: f.Path, ModTime: f.ModTime})
	return nil
}

// releaseHash detaches path from hash. The document itself is only
// considered for collection by collectGarbage, since a concurrent worker
// may be reusing it for another path.
func (s *SyncService) releaseHash(p *pass, hash, path string) {
	s.index.Detach(hash, path)

	p.mu.Lock()
	delete(p.next.Entries, path)
	p.released[hash] = true
	p.mu.Unlock()
}

// collectGarbage deletes released documents that neither the new snapshot
// nor the index references. It runs after every worker has finished.
func (s *SyncService) collectGarbage(ctx context.Context, p *pass) {
	ctx = context.WithoutCancel(ctx)
	for hash := range p.released {
		if p.next.HasHash(hash) {
			continue
		}
		if _, ok := s.index.Get(hash); ok {
			continue
		}
		if err := s.docs.DeleteDocument(ctx, hash); err != nil {
			logger.Warn("delete document %s: %v", hash, err)
		}
	}
}

func (s *SyncService) reconcileRemovals(p *pass) {
	for _, path := range p.previous.Paths() {
		if p.seen[path] || p.shielded(path) {
			continue
		}
		prior, _ := p.previous.Get(path)
		if err := p.tree.Remove(path, p.ext); err != nil {
			logger.Warn("remove artifact %s: %v", path, err)
		}
		s.releaseHash(p, prior.Hash, path)
		p.changeset.Removed = append(p.changeset.Removed, path)
	}
}

// SyncRoot loads the stored snapshot, syncs and stores the result. An
// empty out reuses the output directory recorded for root.
func (s *SyncService) SyncRoot(ctx context.Context, root, out string) (*driving.SyncResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, err, "resolve root %s", root)
	}
	previous, err := s.snapshots.LoadSnapshot(ctx, absRoot)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if previous.Len() == 0 && previous.OutputDir == "" {
		previous = nil
	}
	if out == "" && previous != nil {
		out = previous.OutputDir
	}
	if out == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "no output directory recorded for %s", absRoot)
	}

	result, syncErr := s.Sync(ctx, absRoot, out, previous)
	if result == nil {
		return nil, syncErr
	}
	// Committed work is kept even when the pass was cancelled.
	if err := s.snapshots.SaveSnapshot(context.WithoutCancel(ctx), result.Snapshot); err != nil {
		return result, errors.Join(syncErr, fmt.Errorf("save snapshot: %w", err))
	}
	return result, syncErr
}

// SyncAll resyncs every stored root into its recorded output directory.
// Partial failures are logged and do not stop the other roots.
func (s *SyncService) SyncAll(ctx context.Context) (int, error) {
	roots, err := s.snapshots.ListRoots(ctx)
	if err != nil {
		return 0, fmt.Errorf("list roots: %w", err)
	}

	var errs []error
	synced := 0
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		_, err := s.SyncRoot(ctx, root, "")
		var partial *domain.PartialSyncFailure
		switch {
		case err == nil:
			synced++
		case errors.As(err, &partial):
			synced++
			logger.Warn("sync %s: %v", root, err)
		default:
			errs = append(errs, fmt.Errorf("%s: %w", root, err))
		}
	}
	return synced, errors.Join(errs...)
}

// Rehydrate republishes every stored snapshot entry into the index.
func (s *SyncService) Rehydrate(ctx context.Context) error {
	roots, err := s.snapshots.ListRoots(ctx)
	if err != nil {
		return fmt.Errorf("list roots: %w", err)
	}

	cache := make(map[string]*domain.NormalizedDocument)
	for _, root := range roots {
		snap, err := s.snapshots.LoadSnapshot(ctx, root)
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", root, err)
		}
		for _, path := range snap.Paths() {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, _ := snap.Get(path)
			doc, ok := cache[entry.Hash]
			if !ok {
				doc, err = s.docs.GetDocument(ctx, entry.Hash)
				if err != nil {
					logger.Warn("rehydrate %s/%s: %v", root, path, err)
					continue
				}
				cache[entry.Hash] = doc
			}
			s.index.Upsert(driven.IndexDocument{Doc: doc, Path: path, ModTime: entry.ModTime})
		}
	}
	logger.Info("rehydrated %d documents from %d roots", s.index.Len(), len(roots))
	return nil
}

// Watch syncs root once and again after every settled burst of changes,
// until ctx is cancelled.
func (s *SyncService) Watch(ctx context.Context, root, out string) error {
	if s.watcher == nil {
		return domain.NewError(domain.KindCapabilityUnavailable, "no watcher configured")
	}
	if _, err := s.SyncRoot(ctx, root, out); err != nil && !errors.Is(err, domain.ErrPartialSyncFailure) {
		return err
	}
	err := s.watcher.Watch(ctx, root, func() {
		if _, err := s.SyncRoot(ctx, root, ""); err != nil {
			if errors.Is(err, domain.ErrSyncInProgress) {
				logger.Debug("watch %s: %v", root, err)
				return
			}
			logger.Warn("watch %s: %v", root, err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Status returns the progress of the current or last pass.
func (s *SyncService) Status() driving.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *SyncService) acquire(root string) bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running[root] {
		return false
	}
	s.running[root] = true
	return true
}

func (s *SyncService) release(root string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	delete(s.running, root)
}

func (s *SyncService) startStatus(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = driving.SyncStatus{Root: root, Running: true}
}

func (s *SyncService) finishStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Running = false
}

func (s *SyncService) countProcessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.DocumentsProcessed++
}

func (s *SyncService) countError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.ErrorCount++
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
