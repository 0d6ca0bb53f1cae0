package filesystem

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveLocalPath converts a file:// URI or bare path to a local path.
func ResolveLocalPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}

// RelativePath returns the slash-separated path of target relative to
// root, the form snapshot entries are keyed by. Paths outside root fail.
func RelativePath(root, target string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absTarget, err := filepath.Abs(ResolveLocalPath(target))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", target, root)
	}
	return filepath.ToSlash(rel), nil
}
