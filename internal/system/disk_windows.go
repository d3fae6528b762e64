//go:build windows

package system

import (
	"golang.org/x/sys/windows"
)

// DiskSpace returns the available and total size in bytes of the volume
// containing path via GetDiskFreeSpaceExW.
func DiskSpace(path string) (free, total uint64, err error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, err
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(p, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0, 0, err
	}

	return freeBytesAvailable, totalBytes, nil
}

// FreeSpace returns the available space in bytes of the volume
// containing path.
func FreeSpace(path string) (uint64, error) {
	free, _, err := DiskSpace(path)
	return free, err
}
