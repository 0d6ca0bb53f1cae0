// Package filesystem walks and watches local directory trees.
//
// The walker follows symbolic links and detects cycles by physical
// directory identity ((device, inode) on unix, the resolved real path
// elsewhere), so a link that points back up the tree is never descended
// twice on the same branch.
package filesystem
