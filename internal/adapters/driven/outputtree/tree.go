// Package outputtree writes mirrored artifacts under an output directory.
package outputtree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

var _ driven.OutputTree = (*Tree)(nil)

// Tree is a directory of artifacts mirroring a source tree.
type Tree struct {
	root string
}

// New creates a tree rooted at dir, creating the directory if needed.
func New(dir string) (*Tree, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Tree{root: abs}, nil
}

// Root returns the output directory.
func (t *Tree) Root() string {
	return t.root
}

// Path returns where the artifact for relPath would live.
func (t *Tree) Path(relPath, ext string) string {
	return filepath.Join(t.root, filepath.FromSlash(relPath)+"."+ext)
}

// Write atomically replaces the artifact for relPath. Readers see either
// the old or the new content, never a partial file.
func (t *Tree) Write(relPath, ext string, data []byte) (string, error) {
	if err := checkRel(relPath); err != nil {
		return "", err
	}
	dst := t.Path(relPath, ext)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".docmirror-*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		cleanup()
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	return dst, nil
}

// Remove deletes the artifact and any directories it leaves empty.
func (t *Tree) Remove(relPath, ext string) error {
	if err := checkRel(relPath); err != nil {
		return err
	}
	dst := t.Path(relPath, ext)
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	t.pruneEmpty(filepath.Dir(dst))
	return nil
}

// pruneEmpty removes empty directories from dir up to, not including, the
// root. It stops at the first directory that is not empty.
func (t *Tree) pruneEmpty(dir string) {
	for dir != t.root && strings.HasPrefix(dir, t.root+string(filepath.Separator)) {
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// checkRel rejects paths that would land outside the tree.
func checkRel(relPath string) error {
	clean := path.Clean(relPath)
	if relPath == "" || clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return domain.NewError(domain.KindInvalidInput, "artifact path %q escapes the output tree", relPath)
	}
	return nil
}

// Open satisfies driven.OutputTreeOpener.
func Open(dir string) (driven.OutputTree, error) {
	t, err := New(dir)
	if err != nil {
		return nil, err
	}
	return t, nil
}
