package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure Walker implements the interface.
var _ driven.Walker = (*Walker)(nil)

// fileID identifies a physical directory.
type fileID struct {
	dev, ino uint64
	path     string
}

// Walker walks local directory trees.
type Walker struct{}

// NewWalker creates a filesystem walker.
func NewWalker() *Walker {
	return &Walker{}
}

// walk holds the state of one Walk call.
type walk struct {
	ctx     context.Context
	opts    driven.WalkOptions
	fn      func(driven.WalkedFile) error
	onError func(string, error)
	skip    []fileID
	stack   []fileID
}

// Walk visits every regular file under root in lexical order. Symlinks
// are followed; a directory that is its own ancestor is skipped.
func (w *Walker) Walk(ctx context.Context, root string, opts driven.WalkOptions,
	fn func(driven.WalkedFile) error, onError func(path string, err error)) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewError(domain.KindNotFound, "root %s does not exist", root)
		}
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return domain.NewError(domain.KindInvalidInput, "root %s is not a directory", root)
	}

	if onError == nil {
		onError = func(p string, err error) { logger.Warn("walk %s: %v", p, err) }
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return domain.NewError(domain.KindInvalidInput, "invalid exclude pattern %q", p)
		}
	}

	st := &walk{ctx: ctx, opts: opts, fn: fn, onError: onError}
	for _, dir := range opts.SkipDirs {
		if di, err := os.Stat(dir); err == nil {
			if id, ok := identity(dir, di); ok {
				st.skip = append(st.skip, id)
			}
		}
	}

	id, ok := identity(abs, info)
	if ok {
		st.stack = append(st.stack, id)
	}
	return st.dir(abs, "")
}

func (st *walk) dir(abs, rel string) error {
	entries, err := os.ReadDir(abs)
	if err != nil {
		// Without the root listing nothing can be told apart from a removal.
		if rel == "" {
			return fmt.Errorf("read root: %w", err)
		}
		st.onError(rel, err)
		return nil
	}

	for _, entry := range entries {
		if err := st.ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		childRel := path.Join(rel, name)
		childAbs := filepath.Join(abs, name)

		if !st.opts.IncludeHidden && isHidden(name) {
			continue
		}
		if st.excluded(childRel) {
			continue
		}

		// Stat follows symlinks.
		info, err := os.Stat(childAbs)
		if err != nil {
			st.onError(childRel, err)
			continue
		}

		switch {
		case info.IsDir():
			if err := st.enter(childAbs, childRel, info); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if st.opts.MaxFileSize > 0 && info.Size() > st.opts.MaxFileSize {
				logger.Debug("skip %s: %d bytes exceeds limit", childRel, info.Size())
				continue
			}
			if err := st.fn(driven.WalkedFile{
				Path:         childRel,
				AbsPath:      childAbs,
				DeclaredMIME: DetectMIMEType(name),
				Size:         info.Size(),
				ModTime:      info.ModTime(),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (st *walk) enter(abs, rel string, info os.FileInfo) error {
	id, ok := identity(abs, info)
	if !ok {
		return st.dir(abs, rel)
	}
	if slices.Contains(st.skip, id) {
		logger.Debug("skip %s: excluded directory", rel)
		return nil
	}
	if slices.Contains(st.stack, id) {
		logger.Debug("skip %s: symlink cycle", rel)
		return nil
	}

	st.stack = append(st.stack, id)
	defer func() { st.stack = st.stack[:len(st.stack)-1] }()
	return st.dir(abs, rel)
}

func (st *walk) excluded(rel string) bool {
	for _, p := range st.opts.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Read returns the content of a walked file. Files that grew past the size
// limit since the walk are rejected.
func (w *Walker) Read(ctx context.Context, f driven.WalkedFile, maxSize int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.AbsPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if maxSize <= 0 {
		return io.ReadAll(file)
	}
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, domain.NewError(domain.KindInvalidInput, "%s exceeds %d bytes", f.Path, maxSize)
	}
	return data, nil
}

// Stat describes a single regular file outside any walk. Path is the base
// name.
func (w *Walker) Stat(name string) (driven.WalkedFile, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return driven.WalkedFile{}, fmt.Errorf("resolve %s: %w", name, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return driven.WalkedFile{}, domain.NewError(domain.KindNotFound, "%s does not exist", name)
		}
		return driven.WalkedFile{}, err
	}
	if !info.Mode().IsRegular() {
		return driven.WalkedFile{}, domain.NewError(domain.KindInvalidInput, "%s is not a regular file", name)
	}
	base := filepath.Base(abs)
	return driven.WalkedFile{
		Path:         base,
		AbsPath:      abs,
		DeclaredMIME: DetectMIMEType(base),
		Size:         info.Size(),
		ModTime:      info.ModTime(),
	}, nil
}
