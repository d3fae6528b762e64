package fill

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Resolver turns a raw target path plus size tokens into a Job. The
// free-space probe is pluggable so directory classification can be
// tested without a real filesystem behind it.
type Resolver struct {
	Fs        afero.Fs
	FreeSpace func(path string) (uint64, error)
}

// Resolve classifies path and computes the effective byte target.
//
// A directory target gets a generated sentinel file and an unbounded (or
// user-given) target; a regular file is overwritten in place and the
// target clamps to its current size, since the engine never grows an
// existing file. Anything else is rejected.
func (r *Resolver) Resolve(path, sizeToken, blockToken string, mode ContentMode) (*Job, error) {
	target := Unbounded
	if sizeToken != "" {
		s, err := ParseSize(sizeToken)
		if err != nil {
			return nil, err
		}
		target = s
	}

	block := uint64(DefaultBlockSize)
	if blockToken != "" {
		b, err := ParseSize(blockToken)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, fmt.Errorf("block size %q: %w", blockToken, ErrInvalidBlockSize)
		}
		block = b
	}

	fi, err := r.Fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", path, err)
	}

	job := &Job{
		TargetBytes: target,
		BlockBytes:  block,
		Mode:        mode,
	}

	switch {
	case fi.IsDir():
		job.Path = filepath.Join(path, SentinelName)
		if target == Unbounded && r.FreeSpace != nil {
			// Best effort: the hint only improves the progress display,
			// a failed probe must not fail the job.
			if free, err := r.FreeSpace(path); err == nil {
				job.CapacityHint = free
			}
		}
	case fi.Mode().IsRegular():
		job.Path = path
		job.Preserve = true
		if size := uint64(fi.Size()); target > size {
			job.TargetBytes = size
		}
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedTarget)
	}

	return job, nil
}
