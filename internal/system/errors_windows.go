//go:build windows

package system

import (
	"errors"
	"strings"

	"golang.org/x/sys/windows"
)

// IsDiskFull reports whether err means the volume ran out of space.
func IsDiskFull(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, windows.ERROR_DISK_FULL) ||
		errors.Is(err, windows.ERROR_HANDLE_DISK_FULL) {
		return true
	}

	// Some layers flatten the error code into text.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "not enough space") ||
		strings.Contains(msg, "no space")
}
