//go:build !unix

package filesystem

import (
	"os"
	"path/filepath"
)

// identity returns the resolved real path of a directory.
func identity(path string, _ os.FileInfo) (fileID, bool) {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fileID{}, false
	}
	if abs, err := filepath.Abs(real); err == nil {
		real = abs
	}
	return fileID{path: filepath.Clean(real)}, true
}
