package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
)

const (
	progressReportEveryItems = 1000
	progressReportInterval   = 30 * time.Second
)

// ProgressTracker logs progress towards a known total.
// A report is logged each time a multiple of 1000 items is passed, at completion of the total,
// or when 30 seconds have passed since the last report.
type ProgressTracker struct {
	log            logger.Logger
	mu             sync.Mutex
	description    string
	totalItems     int64
	currentItems   int64
	startTime      time.Time
	lastReportTime time.Time
	now            func() time.Time
}

// NewProgressTracker returns a tracker for total items. Use total 0 when it is unknown.
func NewProgressTracker(log logger.Logger, total int64, description string) *ProgressTracker {
	if description == "" {
		description = "Processing"
	}
	p := &ProgressTracker{log: log, totalItems: total, description: description, now: time.Now}
	p.startTime = p.now()
	p.lastReportTime = p.startTime
	return p
}

// Update adds n processed items.
func (p *ProgressTracker) Update(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prior := p.currentItems
	p.currentItems += n
	t := p.now()
	if p.currentItems/progressReportEveryItems != prior/progressReportEveryItems ||
		p.currentItems == p.totalItems ||
		t.Sub(p.lastReportTime) >= progressReportInterval {
		p.log.Info(p.message(t))
		p.lastReportTime = t
	}
}

// Current returns the number of items processed so far.
func (p *ProgressTracker) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentItems
}

func (p *ProgressTracker) message(t time.Time) string {
	if p.totalItems <= 0 {
		return fmt.Sprintf("%s: %s items processed", p.description, helper.FormatCount(p.currentItems))
	}
	pct := float64(p.currentItems) / float64(p.totalItems) * 100
	elapsed := t.Sub(p.startTime).Seconds()
	var rate float64
	eta := ""
	if p.currentItems > 0 && elapsed > 0 {
		rate = float64(p.currentItems) / elapsed
		if secs := float64(p.totalItems-p.currentItems) / rate; secs > 0 {
			eta = fmt.Sprintf(" (ETA: %.0fs)", secs)
		}
	}
	return fmt.Sprintf("%s: %s/%s (%.1f%%) - %.1f items/sec%s",
		p.description, helper.FormatCount(p.currentItems), helper.FormatCount(p.totalItems), pct, rate, eta)
}

// Complete logs the final count and average rate.
func (p *ProgressTracker) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	elapsed := p.now().Sub(p.startTime).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(p.currentItems) / elapsed
	}
	p.log.Info(fmt.Sprintf("%s completed: %s items in %.1fs (avg %.1f items/sec)",
		p.description, helper.FormatCount(p.currentItems), elapsed, rate))
}
