package driven

import (
	"context"
	"time"
)

// WalkedFile is one regular file found by a Walker.
type WalkedFile struct {
	// Path is slash-separated and relative to the walk root.
	Path string

	// AbsPath is the path used to open the file.
	AbsPath string

	// DeclaredMIME is the content type implied by the file name.
	DeclaredMIME string

	Size    int64
	ModTime time.Time
}

// WalkOptions controls which entries a Walker visits.
type WalkOptions struct {
	// IncludeHidden visits dot-files and dot-directories.
	IncludeHidden bool

	// Exclude lists doublestar globs matched against relative paths.
	Exclude []string

	// SkipDirs lists absolute directories that are never entered, such as
	// an output directory nested inside the root.
	SkipDirs []string

	// MaxFileSize skips larger files (0 = unlimited).
	MaxFileSize int64
}

// Walker enumerates the regular files under a root, following symlinks
// and never descending into a directory that is its own ancestor.
type Walker interface {
	// Walk calls fn for every file. A non-nil error from fn stops the walk
	// and is returned. Per-entry read errors are reported through onError
	// and do not stop the walk.
	Walk(ctx context.Context, root string, opts WalkOptions,
		fn func(WalkedFile) error, onError func(path string, err error)) error

	// Read returns a walked file's content. maxSize > 0 rejects larger files.
	Read(ctx context.Context, f WalkedFile, maxSize int64) ([]byte, error)

	// Stat describes one regular file by path. Missing files fail with
	// NotFound.
	Stat(name string) (WalkedFile, error)
}

// Watcher reports that something under a root changed.
type Watcher interface {
	// Watch blocks until ctx is cancelled, calling onChange after each
	// burst of filesystem events has settled.
	Watch(ctx context.Context, root string, onChange func()) error
}
