//go:build !windows

package system

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsDiskFull reports whether err means "no space left on device".
func IsDiskFull(err error) bool {
	return errors.Is(err, unix.ENOSPC)
}
