//go:build unix

package filesystem

import (
	"os"
	"syscall"
)

// identity returns the (device, inode) pair of a directory.
func identity(_ string, info os.FileInfo) (fileID, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, false
	}
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}
