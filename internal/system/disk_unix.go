//go:build !windows

package system

import (
	"golang.org/x/sys/unix"
)

// DiskSpace returns the available and total size in bytes of the
// filesystem containing path.
func DiskSpace(path string) (free, total uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	// Available space = blocks available to unprivileged users * block size
	free = uint64(stat.Bavail) * uint64(stat.Bsize)
	total = uint64(stat.Blocks) * uint64(stat.Bsize)
	return free, total, nil
}

// FreeSpace returns the available space in bytes of the filesystem
// containing path.
func FreeSpace(path string) (uint64, error) {
	free, _, err := DiskSpace(path)
	return free, err
}
