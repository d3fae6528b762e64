//go:build linux

package system

import (
	"golang.org/x/sys/unix"
)

// ioprio_set values, see linux/ioprio.h.
const (
	ioprioWhoProcess = 1
	ioprioClassIdle  = 3
	ioprioClassShift = 13
)

// BackgroundPriority lowers the CPU priority of the process to the
// minimum and moves its I/O to the idle scheduling class, so a long fill
// does not starve other workloads. Failure is not fatal, callers log and
// continue.
func BackgroundPriority() error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, 19); err != nil {
		return err
	}

	ioprio := uintptr(ioprioClassIdle<<ioprioClassShift | 7)
	if _, _, errno := unix.Syscall(unix.SYS_IOPRIO_SET, ioprioWhoProcess, 0, ioprio); errno != 0 {
		return errno
	}

	return nil
}
