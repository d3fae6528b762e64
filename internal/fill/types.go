package fill

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	// SentinelName is the hidden file created inside a directory target.
	SentinelName = ".fillfs"

	// DefaultBlockSize is used when no block size is configured.
	DefaultBlockSize = 32 * 1024 * 1024

	// Unbounded marks a job with no concrete byte target; it terminates
	// only when the device reports exhaustion.
	Unbounded = uint64(math.MaxUint64)
)

// ContentMode selects what the fill buffer holds.
type ContentMode int

const (
	ModeZero ContentMode = iota
	ModeRandom
)

func (m ContentMode) String() string {
	if m == ModeRandom {
		return "random"
	}
	return "zero"
}

// Terminal statuses of a fill job. Disk full is a success, not a
// failure: it is the natural end of an unbounded fill.
const (
	StatusTargetReached = "COMPLETED_TARGET"
	StatusDiskFull      = "COMPLETED_DISK_FULL"
	StatusFailed        = "FAILED"
)

// Job is the fully resolved description of one fill run. It is built by
// Resolver, owned by Loop while running, and discarded after the shell
// prints its summary.
type Job struct {
	// Path is the file actually written to: either the sentinel inside a
	// directory target, or the user's existing file.
	Path string

	// TargetBytes is the byte count to stop at, or Unbounded.
	TargetBytes uint64

	// BlockBytes is the size of each write.
	BlockBytes uint64

	Mode ContentMode

	// Preserve is true when Path is a user-supplied existing file, which
	// is never deleted. Sentinel files are always deleted on exit.
	Preserve bool

	// CapacityHint is the probed free space of a directory target, used
	// only for the progress display of unbounded fills. Zero means no
	// hint; the display then degrades to throughput only.
	CapacityHint uint64

	// written is shared between the writer and the progress observer and
	// is the only datum they share.
	written atomic.Uint64
}

// Bounded reports whether the job has a concrete byte target.
func (j *Job) Bounded() bool {
	return j.TargetBytes != Unbounded
}

// Written returns the bytes written so far. Safe to call concurrently
// with the writer.
func (j *Job) Written() uint64 {
	return j.written.Load()
}

func (j *Job) addWritten(n uint64) {
	j.written.Add(n)
}

// Result describes how a run ended.
type Result struct {
	Status       string
	BytesWritten uint64
	Duration     time.Duration
	SpeedMBps    float64
}
