package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"fillfs/internal/fill"
)

// Report is the JSON record of one fill run.
type Report struct {
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Hostname  string    `json:"hostname,omitempty"`

	Target    string `json:"target"`
	Mode      string `json:"mode"`
	Preserved bool   `json:"preserved"`

	// TargetBytes is omitted for unbounded fills.
	TargetBytes uint64 `json:"target_bytes,omitempty"`
	Unbounded   bool   `json:"unbounded,omitempty"`

	Status            string  `json:"status"`
	BytesWritten      uint64  `json:"bytes_written"`
	BytesWrittenHuman string  `json:"bytes_written_human"`
	DurationSeconds   float64 `json:"duration_seconds"`
	SpeedMBps         float64 `json:"speed_mbps"`
	ExitCode          int     `json:"exit_code"`
}

// Generate builds the run report from a finished (or failed) job.
func Generate(job *fill.Job, result *fill.Result, version string, startTime time.Time, exitCode int) *Report {
	r := &Report{
		RunID:     fmt.Sprintf("run_%d", startTime.UnixNano()),
		Version:   version,
		Timestamp: startTime,
		Target:    job.Path,
		Mode:      job.Mode.String(),
		Preserved: job.Preserve,

		Status:            result.Status,
		BytesWritten:      result.BytesWritten,
		BytesWrittenHuman: humanize.IBytes(result.BytesWritten),
		DurationSeconds:   result.Duration.Seconds(),
		SpeedMBps:         result.SpeedMBps,
		ExitCode:          exitCode,
	}

	if job.Bounded() {
		r.TargetBytes = job.TargetBytes
	} else {
		r.Unbounded = true
	}

	if hostname, err := os.Hostname(); err == nil {
		r.Hostname = hostname
	}

	return r
}

// Save writes the report as indented JSON, creating the directory when
// needed.
func Save(r *Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}
