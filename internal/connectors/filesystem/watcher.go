package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.Watcher = (*Watcher)(nil)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 500 * time.Millisecond

// WatchOptions configures a Watcher.
type WatchOptions struct {
	// Debounce is the quiet period after the last event before onChange
	// fires.
	Debounce time.Duration

	// IncludeHidden reports changes to dot-files.
	IncludeHidden bool

	// SkipDirs are absolute directories whose events are ignored, such as
	// an output directory nested inside the watched root.
	SkipDirs []string
}

// Watcher watches a directory tree with fsnotify.
type Watcher struct {
	opts WatchOptions
}

// NewWatcher creates a filesystem watcher.
func NewWatcher(opts WatchOptions) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	for i, d := range opts.SkipDirs {
		if abs, err := filepath.Abs(d); err == nil {
			opts.SkipDirs[i] = filepath.Clean(abs)
		}
	}
	return &Watcher{opts: opts}
}

// Watch registers every directory under root and calls onChange once per
// settled burst of relevant events. It returns nil when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, root string, onChange func()) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, root); err != nil {
		return err
	}

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("watch event %s %s", event.Op, event.Name)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
				}
			}
			timer.Reset(w.opts.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			onChange()
		}
	}
}

// addTree adds dir and its visible subdirectories.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("watch walk %s: %v", p, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && (w.skipped(p) || (!w.opts.IncludeHidden && isHidden(d.Name()))) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// relevant filters out attribute-only changes, hidden entries and events
// under skipped directories.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !w.opts.IncludeHidden && isHidden(filepath.Base(event.Name)) {
		return false
	}
	return !w.skipped(event.Name)
}

func (w *Watcher) skipped(p string) bool {
	p = filepath.Clean(p)
	for _, d := range w.opts.SkipDirs {
		if p == d || strings.HasPrefix(p, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
