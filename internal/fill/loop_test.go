package fill

import (
	"context"
	"io/fs"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fillfs/internal/logging"
)

func quietLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New("ERROR", "", false)
	require.NoError(t, err)
	return logger
}

func newTestLoop(t *testing.T, job *Job, fsys afero.Fs) *Loop {
	t.Helper()
	l := NewLoop(job, fsys, quietLogger(t))
	l.IdlePriority = false
	l.FlushInterval = 0
	return l
}

func TestRunBoundedReachesTarget(t *testing.T) {
	const target = 100 * 1024 // not a multiple of the block size
	const block = 32 * 1024

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/mnt", 0755))

	job := &Job{
		Path:        "/mnt/.fillfs",
		TargetBytes: target,
		BlockBytes:  block,
		Mode:        ModeZero,
	}

	result, err := newTestLoop(t, job, fsys).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusTargetReached, result.Status)
	assert.Equal(t, uint64(target), result.BytesWritten)
	assert.Equal(t, uint64(target), job.Written())

	fi, err := fsys.Stat("/mnt/.fillfs")
	require.NoError(t, err)
	assert.Equal(t, int64(target), fi.Size())
}

func TestRunZeroTarget(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/mnt", 0755))

	job := &Job{
		Path:        "/mnt/.fillfs",
		TargetBytes: 0,
		BlockBytes:  DefaultBlockSize,
		Mode:        ModeZero,
	}

	result, err := newTestLoop(t, job, fsys).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusTargetReached, result.Status)
	assert.Zero(t, result.BytesWritten)

	// The sentinel is still created (and truncated) before the loop.
	fi, err := fsys.Stat("/mnt/.fillfs")
	require.NoError(t, err)
	assert.Zero(t, fi.Size())
}

func TestRunPreservingFile(t *testing.T) {
	const fileSize = 64 * 1024
	const target = 16 * 1024

	original := make([]byte, fileSize)
	for i := range original {
		original[i] = 0xFF
	}

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/victim.bin", original, 0644))

	job := &Job{
		Path:        "/victim.bin",
		TargetBytes: target,
		BlockBytes:  8 * 1024,
		Mode:        ModeZero,
		Preserve:    true,
	}

	result, err := newTestLoop(t, job, fsys).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusTargetReached, result.Status)

	data, err := afero.ReadFile(fsys, "/victim.bin")
	require.NoError(t, err)
	require.Len(t, data, fileSize, "an existing file must never change size")

	for i := 0; i < target; i++ {
		if data[i] != 0 {
			t.Fatalf("byte %d is %#x, want 0", i, data[i])
		}
	}
	for i := target; i < fileSize; i++ {
		if data[i] != 0xFF {
			t.Fatalf("byte %d is %#x, want 0xff (untouched tail)", i, data[i])
		}
	}
}

// quotaFs caps the total bytes writable through it; the write that
// crosses the cap succeeds partially and then reports ENOSPC, the way a
// real filesystem does.
type quotaFs struct {
	afero.Fs
	remaining int
}

func (q *quotaFs) OpenFile(name string, flag int, perm fs.FileMode) (afero.File, error) {
	f, err := q.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &quotaFile{File: f, fs: q}, nil
}

type quotaFile struct {
	afero.File
	fs *quotaFs
}

func (f *quotaFile) Write(p []byte) (int, error) {
	enospc := &fs.PathError{Op: "write", Path: f.Name(), Err: syscall.ENOSPC}
	if f.fs.remaining <= 0 {
		return 0, enospc
	}
	if len(p) > f.fs.remaining {
		n, err := f.File.Write(p[:f.fs.remaining])
		f.fs.remaining -= n
		if err != nil {
			return n, err
		}
		return n, enospc
	}
	n, err := f.File.Write(p)
	f.fs.remaining -= n
	return n, err
}

func TestRunDiskFullIsSuccess(t *testing.T) {
	const quota = 100 * 1000 // forces one final partial write
	const block = 32 * 1024

	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/mnt", 0755))
	fsys := &quotaFs{Fs: mem, remaining: quota}

	job := &Job{
		Path:        "/mnt/.fillfs",
		TargetBytes: Unbounded,
		BlockBytes:  block,
		Mode:        ModeZero,
	}

	result, err := newTestLoop(t, job, fsys).Run(context.Background())
	require.NoError(t, err, "running out of space is a successful outcome")

	assert.Equal(t, StatusDiskFull, result.Status)
	assert.Equal(t, uint64(quota), result.BytesWritten,
		"the partial chunk before ENOSPC must be counted")

	fi, err := mem.Stat("/mnt/.fillfs")
	require.NoError(t, err)
	assert.Equal(t, int64(quota), fi.Size())
}

// brokenFs fails every write with a non-space error.
type brokenFs struct{ afero.Fs }

func (b brokenFs) OpenFile(name string, flag int, perm fs.FileMode) (afero.File, error) {
	f, err := b.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return brokenFile{f}, nil
}

type brokenFile struct{ afero.File }

func (f brokenFile) Write(p []byte) (int, error) {
	return 0, &fs.PathError{Op: "write", Path: f.Name(), Err: syscall.EIO}
}

func TestRunWriteFailure(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/mnt", 0755))

	job := &Job{
		Path:        "/mnt/.fillfs",
		TargetBytes: 1024 * 1024,
		BlockBytes:  64 * 1024,
		Mode:        ModeZero,
	}

	result, err := newTestLoop(t, job, brokenFs{mem}).Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, syscall.EIO)

	require.NotNil(t, result, "a failed run still reports the partial fill")
	assert.Equal(t, StatusFailed, result.Status)
	assert.Zero(t, result.BytesWritten)
}

func TestRunOpenFailure(t *testing.T) {
	fsys := afero.NewMemMapFs()

	job := &Job{
		Path:        "/nope/.fillfs",
		TargetBytes: 1024,
		BlockBytes:  1024,
		Mode:        ModeZero,
		Preserve:    true, // O_WRONLY without create
	}

	result, err := newTestLoop(t, job, fsys).Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StatusFailed, result.Status)
}

// syncFailFs fails every Sync while letting writes through.
type syncFailFs struct{ afero.Fs }

func (s syncFailFs) OpenFile(name string, flag int, perm fs.FileMode) (afero.File, error) {
	f, err := s.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return syncFailFile{f}, nil
}

type syncFailFile struct{ afero.File }

func (f syncFailFile) Sync() error {
	return &fs.PathError{Op: "sync", Path: f.Name(), Err: syscall.EIO}
}

func TestRunTerminalFlushFailure(t *testing.T) {
	const target = 64 * 1024

	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/mnt", 0755))

	job := &Job{
		Path:        "/mnt/.fillfs",
		TargetBytes: target,
		BlockBytes:  target,
		Mode:        ModeZero,
	}

	// FlushInterval stays 0, so the only Sync is the terminal one.
	result, err := newTestLoop(t, job, syncFailFs{mem}).Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, syscall.EIO)

	require.NotNil(t, result)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, uint64(target), result.BytesWritten,
		"the writes before the failed flush still count")
}

func TestRunPeriodicFlushFailure(t *testing.T) {
	const block = 32 * 1024

	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/mnt", 0755))

	job := &Job{
		Path:        "/mnt/.fillfs",
		TargetBytes: 4 * block,
		BlockBytes:  block,
		Mode:        ModeZero,
	}

	l := newTestLoop(t, job, syncFailFs{mem})
	l.FlushInterval = time.Nanosecond // flush after every block

	result, err := l.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, syscall.EIO)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, uint64(block), result.BytesWritten,
		"the first periodic flush aborts the run after one block")
}

// syncCountFs counts the Syncs issued through it.
type syncCountFs struct {
	afero.Fs
	syncs int
}

func (s *syncCountFs) OpenFile(name string, flag int, perm fs.FileMode) (afero.File, error) {
	f, err := s.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &syncCountFile{File: f, fs: s}, nil
}

type syncCountFile struct {
	afero.File
	fs *syncCountFs
}

func (f *syncCountFile) Sync() error {
	f.fs.syncs++
	return f.File.Sync()
}

func TestRunPeriodicFlush(t *testing.T) {
	const block = 32 * 1024

	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/mnt", 0755))
	fsys := &syncCountFs{Fs: mem}

	job := &Job{
		Path:        "/mnt/.fillfs",
		TargetBytes: 4 * block,
		BlockBytes:  block,
		Mode:        ModeZero,
	}

	l := newTestLoop(t, job, fsys)
	l.FlushInterval = time.Nanosecond

	result, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusTargetReached, result.Status)

	// One periodic flush after every block, plus the terminal one.
	assert.Equal(t, 5, fsys.syncs)
}

func TestRunCancelled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/mnt", 0755))

	job := &Job{
		Path:        "/mnt/.fillfs",
		TargetBytes: 1024 * 1024,
		BlockBytes:  64 * 1024,
		Mode:        ModeZero,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestLoop(t, job, fsys).Run(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusFailed, result.Status)
}
