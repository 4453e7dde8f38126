package stats

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// TransferStats summarises a completed transfer.
type TransferStats struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	RowsTransferred int64     `json:"rows_transferred"`
	FilesLoaded     int       `json:"files_loaded"`
	DurationSeconds float64   `json:"duration_seconds"`
	MemoryUsedMB    float64   `json:"memory_used_mb"`
	Errors          int       `json:"errors"`
	Warnings        int       `json:"warnings"`
}

// RowsPerSecond returns the average transfer rate or 0 if no time has passed.
func (t TransferStats) RowsPerSecond() float64 {
	if t.DurationSeconds <= 0 {
		return 0
	}
	return float64(t.RowsTransferred) / t.DurationSeconds
}

// Finish sets the end time, duration and memory used since memStartMB.
func (t *TransferStats) Finish(end time.Time, memStartMB float64) {
	t.EndTime = end
	t.DurationSeconds = end.Sub(t.StartTime).Seconds()
	if m, err := MemoryUsageMB(); err == nil {
		t.MemoryUsedMB = m - memStartMB
	}
}

// MemoryUsageMB returns the resident set size of this process in megabytes.
func MemoryUsageMB() (float64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, errors.Wrap(err, "error finding current process")
	}
	m, err := p.MemoryInfo()
	if err != nil {
		return 0, errors.Wrap(err, "error reading process memory")
	}
	return float64(m.RSS) / 1024 / 1024, nil
}
