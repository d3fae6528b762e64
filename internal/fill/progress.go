package fill

import (
	"fmt"
	"time"
)

// emaAlpha is the smoothing factor of the throughput moving average.
const emaAlpha = 0.2

// Estimator derives throughput, progress and ETA from the job's shared
// byte counter. It never touches the writer's state and rate-limits
// itself to one snapshot per second, so a polling shell can call Sample
// as often as it likes.
type Estimator struct {
	job        *Job
	start      time.Time
	ema        float64
	seeded     bool
	lastSample time.Time
}

func NewEstimator(job *Job) *Estimator {
	return &Estimator{job: job, start: time.Now()}
}

// Snapshot is one rendered progress observation.
type Snapshot struct {
	WrittenBytes uint64

	// BasisBytes is what percent and ETA are computed against: the
	// concrete target, or the capacity hint for unbounded fills. Zero
	// when neither is known.
	BasisBytes uint64

	HasPercent     bool
	Percent        float64
	ThroughputMBps float64
	ETASeconds     int
}

// Sample produces a snapshot for the given counter value, or ok=false
// when less than a second passed since the previous snapshot.
func (e *Estimator) Sample(written uint64) (Snapshot, bool) {
	now := time.Now()
	if !e.lastSample.IsZero() && now.Sub(e.lastSample) < time.Second {
		return Snapshot{}, false
	}

	elapsed := now.Sub(e.start).Seconds()
	if elapsed <= 0 {
		return Snapshot{}, false
	}
	e.lastSample = now

	instant := float64(written) / (1024 * 1024) / elapsed
	if !e.seeded {
		e.ema = instant
		e.seeded = true
	} else {
		e.ema = emaAlpha*instant + (1-emaAlpha)*e.ema
	}

	return e.snapshot(written), true
}

func (e *Estimator) snapshot(written uint64) Snapshot {
	s := Snapshot{
		WrittenBytes:   written,
		ThroughputMBps: e.ema,
	}

	var basis uint64
	if e.job.Bounded() {
		basis = e.job.TargetBytes
	} else if e.job.CapacityHint > 0 {
		basis = e.job.CapacityHint
	}
	if basis == 0 {
		return s
	}

	s.BasisBytes = basis
	s.HasPercent = true
	s.Percent = 100 * float64(written) / float64(basis)
	if s.Percent > 100 {
		s.Percent = 100
	}

	var remaining float64
	if basis > written {
		remaining = float64(basis - written)
	}
	if e.ema > 0 {
		s.ETASeconds = int(remaining/(1024*1024)/e.ema + 0.5)
	}

	return s
}

// StatusLine renders the single refreshed progress line. Without a
// basis there is no percentage or ETA, only throughput.
func (s Snapshot) StatusLine() string {
	writtenMB := float64(s.WrittenBytes) / (1024 * 1024)

	if !s.HasPercent {
		return fmt.Sprintf("Written: %.2f MB | Throughput: %.2f MB/s",
			writtenMB, s.ThroughputMBps)
	}

	totalMB := float64(s.BasisBytes) / (1024 * 1024)
	return fmt.Sprintf("Progress: %.2f%% | Written: %.2f / %.2f MB | Throughput: %.2f MB/s | ETA: %s",
		s.Percent, writtenMB, totalMB, s.ThroughputMBps, FormatETA(s.ETASeconds))
}

// FormatETA renders whole seconds as H:MM:SS.
func FormatETA(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
