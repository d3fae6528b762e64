package fill

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"

	"fillfs/internal/logging"
	"fillfs/internal/system"
)

// DefaultFlushInterval bounds how much unflushed data a long run can
// accumulate; it also keeps write-back caching from inflating the
// displayed throughput.
const DefaultFlushInterval = 60 * time.Second

// Loop is the write/flush state machine. It owns the job for the
// duration of Run and is the only writer; observers read the job's
// counter concurrently.
type Loop struct {
	job    *Job
	fs     afero.Fs
	logger *logging.Logger

	// FlushInterval is the spacing of periodic Syncs, measured from the
	// last flush. Zero disables periodic flushing; the terminal flush
	// always happens.
	FlushInterval time.Duration

	// IdlePriority drops the process to background CPU/IO priority
	// before writing. Failure to do so is logged and ignored.
	IdlePriority bool
}

func NewLoop(job *Job, fsys afero.Fs, logger *logging.Logger) *Loop {
	return &Loop{
		job:           job,
		fs:            fsys,
		logger:        logger,
		FlushInterval: DefaultFlushInterval,
		IdlePriority:  true,
	}
}

// Run writes blocks until the target is reached, the device is full, or
// an error occurs. Disk full is a successful terminal state. The
// returned Result is non-nil even on error so callers can report the
// partial fill.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	job := l.job

	if l.IdlePriority {
		if err := system.BackgroundPriority(); err != nil {
			l.logger.Log("WARN", "Cannot lower process priority", "error", err.Error())
		}
	}

	buf := NewFillBuffer(job.Mode, job.BlockBytes)

	// Sentinel files always restart from byte 0; an existing file is
	// opened without truncation so its length never changes.
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if job.Preserve {
		flag = os.O_WRONLY
	}

	f, err := l.fs.OpenFile(job.Path, flag, 0666)
	if err != nil {
		return l.finish(StatusFailed, start), fmt.Errorf("cannot open %s: %w", job.Path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Log("WARN", "Error closing target", "file", job.Path, "error", closeErr.Error())
		}
	}()

	status := StatusTargetReached
	lastFlush := time.Now()

	for job.Written() < job.TargetBytes {
		select {
		case <-ctx.Done():
			return l.finish(StatusFailed, start), fmt.Errorf("fill interrupted: %w", ctx.Err())
		default:
		}

		n := job.BlockBytes
		if remaining := job.TargetBytes - job.Written(); remaining < n {
			n = remaining
		}

		wrote, werr := f.Write(buf[:int(n)])
		if wrote > 0 {
			// Short writes are fine, the next iteration recomputes the
			// remainder from the counter.
			job.addWritten(uint64(wrote))
		}
		if werr != nil {
			if system.IsDiskFull(werr) {
				// The expected terminal condition of an unbounded fill.
				status = StatusDiskFull
				break
			}
			return l.finish(StatusFailed, start), fmt.Errorf("write to %s failed: %w", job.Path, werr)
		}

		if l.FlushInterval > 0 && time.Since(lastFlush) >= l.FlushInterval {
			if err := f.Sync(); err != nil {
				return l.finish(StatusFailed, start), fmt.Errorf("flush of %s failed: %w", job.Path, err)
			}
			lastFlush = time.Now()
		}
	}

	if err := f.Sync(); err != nil {
		return l.finish(StatusFailed, start), fmt.Errorf("flush of %s failed: %w", job.Path, err)
	}

	result := l.finish(status, start)
	l.logger.Log("INFO", "Fill finished",
		"target", job.Path, "status", status,
		"bytes", result.BytesWritten, "speed_mbps", result.SpeedMBps)
	return result, nil
}

func (l *Loop) finish(status string, start time.Time) *Result {
	r := &Result{
		Status:       status,
		BytesWritten: l.job.Written(),
		Duration:     time.Since(start),
	}
	if r.Duration.Seconds() > 0 {
		r.SpeedMBps = float64(r.BytesWritten) / (1024 * 1024) / r.Duration.Seconds()
	}
	return r
}
