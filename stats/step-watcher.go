package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	c "github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
)

// StepWatcher saves stats for a given pipeline step periodically.
// The step can call StartWatching() and StopWatching().
type StepWatcher struct {
	log             logger.Logger
	stepName        string
	mu              sync.Mutex
	rowCountPtr     *int64     // ptr to rowCount held in a given step for which we are capturing stats.
	bufferLenFn     func() int // reports the length of the step's output buffer.
	chanLen         int64
	startTime       time.Time
	rowsPerSecDelta int64
	rowsPerSecAvg   int64
	totalRows       int64
	priorRowCount   int64     // allows us to calculate delta rows per sec between ticker timeout.
	priorTime       time.Time // allows us to calculate delta rows per sec between ticker timeout.
	ticker          *time.Ticker
	tickerDone      chan struct{}
	isRunning       atomic.Bool
}

type Stats struct {
	StepName           string `json:"stepName"`
	StatusText         string `json:"statusText"`
	StatusEmoji        string `json:"statusEmoji"`
	ElapsedTimeSec     int    `json:"elapsedTimeSec"`
	TotalRowsProcessed int    `json:"totalRowsProcessed"`
	RowsPerSecondAvg   int    `json:"rowsPerSecondAvg"`
	RowsPerSecondDelta int    `json:"rowsPerSecondDelta"`
	OutputBufferLen    int    `json:"outputBufferLen"`
}

func NewStepWatcher(log logger.Logger, stepName string) *StepWatcher {
	return &StepWatcher{log: log, stepName: stepName, tickerDone: make(chan struct{})}
}

// StartWatching samples *rowCountPtr and bufferLenFn every StatsCaptureFrequencySeconds.
// bufferLenFn may be nil.
func (n *StepWatcher) StartWatching(rowCountPtr *int64, bufferLenFn func() int) {
	n.mu.Lock()
	n.rowCountPtr = rowCountPtr
	n.bufferLenFn = bufferLenFn
	n.startTime = time.Now()
	n.priorTime = n.startTime
	n.priorRowCount = 0
	atomic.StoreInt64(&n.totalRows, 0) // force reset in case a given step is able to repeatedly call this.
	n.mu.Unlock()
	n.isRunning.Store(true)
	n.CalculateStats()
	n.ticker = time.NewTicker(time.Second * c.StatsCaptureFrequencySeconds)
	go func() {
		for {
			select {
			case <-n.ticker.C:
				n.CalculateStats()
			case <-n.tickerDone:
				return
			}
		}
	}()
}

func (n *StepWatcher) StopWatching() {
	if n.ticker == nil {
		return
	}
	n.ticker.Stop()
	n.tickerDone <- struct{}{} // stop the goroutine that calculates stats.
	n.CalculateStats()         // force final stats calculation.
	n.isRunning.Store(false)
	atomic.StoreInt64(&n.chanLen, 0)
}

func (n *StepWatcher) CalculateStats() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.rowCountPtr == nil { // if we never started...
		return
	}
	deltaTime := int64(time.Since(n.priorTime).Seconds())
	if deltaTime < 1 { // if we will cause divide by 0 error...
		deltaTime = 1
	}
	rowCount := atomic.LoadInt64(n.rowCountPtr)
	deltaRowCount := rowCount - n.priorRowCount
	atomic.StoreInt64(&n.rowsPerSecDelta, deltaRowCount/deltaTime)
	if n.bufferLenFn != nil {
		atomic.StoreInt64(&n.chanLen, int64(n.bufferLenFn()))
	}
	n.log.Debug("STATS: ", n.stepName, " processing ", atomic.LoadInt64(&n.rowsPerSecDelta), " rows per sec. Output buffer length ", atomic.LoadInt64(&n.chanLen))
	n.priorRowCount = rowCount
	n.priorTime = time.Now()
	total := atomic.AddInt64(&n.totalRows, deltaRowCount)
	atomic.StoreInt64(&n.rowsPerSecAvg, total/getNumSecondsSinceTimeOrOne(n.startTime))
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (n *StepWatcher) RenderStats() Stats {
	var statusText, statusEmoji string
	if n.isRunning.Load() {
		statusText = "running"
		statusEmoji = "\U0000231B" // hour glass
	} else {
		statusText = "complete"
		statusEmoji = "\U00002705" // green tick
	}
	n.mu.Lock()
	start := n.startTime
	n.mu.Unlock()
	return Stats{
		StepName:           n.stepName,
		StatusText:         statusText,
		StatusEmoji:        statusEmoji,
		ElapsedTimeSec:     int(time.Since(start).Seconds()),
		TotalRowsProcessed: int(atomic.LoadInt64(&n.totalRows)),
		RowsPerSecondAvg:   int(atomic.LoadInt64(&n.rowsPerSecAvg)),
		RowsPerSecondDelta: int(atomic.LoadInt64(&n.rowsPerSecDelta)),
		OutputBufferLen:    int(atomic.LoadInt64(&n.chanLen)),
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats for %v %v %v "+
			"elapsedTimeSec=%v "+
			"totalRowsProcessed=%v "+
			"rowsPerSecondAvg=%v "+
			"rowsPerSecondDelta=%v "+
			"outputBufferLen=%v",
		s.StepName, s.StatusText, s.StatusEmoji,
		s.ElapsedTimeSec,
		s.TotalRowsProcessed,
		s.RowsPerSecondAvg,
		s.RowsPerSecondDelta,
		s.OutputBufferLen,
	)
}

func getNumSecondsSinceTimeOrOne(t time.Time) (seconds int64) {
	seconds = int64(time.Since(t).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return
}
