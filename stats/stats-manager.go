package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cevaris/ordered_map"
	"github.com/relloyd/snowxfer/logger"
)

// StatsManager captures stats for the steps of a running pipeline.
type StatsManager interface {
	StartDumping()
	StopDumping()
	AddStepWatcher(stepName string) *StepWatcher
	StatsFetcher
}

type StatsFetcher interface {
	GetStats() []Stats
}

const DefaultStatsDumpFrequencySeconds = 5

// PipelineStatsManager implements StatsManager and
// is used to save stats from each pipeline step added via calls to AddStepWatcher.
// Steps are reported in the order they were added.
type PipelineStatsManager struct {
	ticker              *time.Ticker
	tickerDone          chan struct{}
	tickerIsRunningFlag int32
	tickerFrequency     int
	mu                  sync.Mutex
	mapMu               sync.RWMutex
	log                 logger.Logger
	mapStepStats        *ordered_map.OrderedMap // StepWatcher{} details of all steps that we are gathering stats from.
}

// SetStatsDumpFrequency returns a function that can be supplied as an option to constructor NewPipelineStats().
// Zero disables periodic dumping.
func SetStatsDumpFrequency(seconds int) func(t *PipelineStatsManager) {
	return func(t *PipelineStatsManager) {
		t.tickerFrequency = seconds
	}
}

// NewPipelineStats creates a new PipelineStatsManager.
// Optionally supply func SetStatsDumpFrequency() to override the default stats dump frequency.
func NewPipelineStats(log logger.Logger, options ...func(t *PipelineStatsManager)) *PipelineStatsManager {
	t := &PipelineStatsManager{log: log, tickerFrequency: DefaultStatsDumpFrequencySeconds}
	for _, option := range options {
		option(t)
	}
	t.tickerDone = make(chan struct{})
	t.mapStepStats = ordered_map.NewOrderedMap()
	return t
}

// AddStepWatcher creates a new StepWatcher and saves it into this manager.
// To be used per pipeline step that is created.
func (t *PipelineStatsManager) AddStepWatcher(stepName string) *StepWatcher {
	sw := NewStepWatcher(t.log, stepName)
	t.mapMu.Lock()
	t.mapStepStats.Set(stepName, sw)
	t.mapMu.Unlock()
	return sw
}

func (t *PipelineStatsManager) StartDumping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if atomic.LoadInt32(&t.tickerIsRunningFlag) != 0 {
		t.log.Debug("stats dumper ticker already running")
		return
	}
	if t.tickerFrequency <= 0 {
		t.log.Debug("stats dumper disabled")
		return
	}
	t.ticker = time.NewTicker(time.Second * time.Duration(t.tickerFrequency))
	atomic.StoreInt32(&t.tickerIsRunningFlag, 1)
	go func() {
		t.log.Debug("stats dumper ticker started")
		for {
			select {
			case <-t.tickerDone:
				t.log.Debug("stats dumper ticker stopped")
				return
			case <-t.ticker.C:
				t.logStats()
			}
		}
	}()
}

// StopDumping will stop the ticker and dump the current stats,
// only if the ticker was already running via a call to StartDumping().
func (t *PipelineStatsManager) StopDumping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if atomic.LoadInt32(&t.tickerIsRunningFlag) == 0 {
		return
	}
	atomic.StoreInt32(&t.tickerIsRunningFlag, 0)
	t.ticker.Stop()
	t.tickerDone <- struct{}{} // cause the goroutine to exit (we can't close ticker.C)
	for _, sw := range t.watchers() {
		sw.CalculateStats() // calculate stats for the last time per step.
	}
	t.logStats()
}

func (t *PipelineStatsManager) watchers() []*StepWatcher {
	t.mapMu.RLock()
	defer t.mapMu.RUnlock()
	retval := make([]*StepWatcher, 0, t.mapStepStats.Len())
	iter := t.mapStepStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Value.(*StepWatcher))
	}
	return retval
}

func (t *PipelineStatsManager) logStats() {
	for _, sw := range t.watchers() {
		t.log.Info(sw.RenderStats().String())
	}
}

// GetStats implements interface StatsFetcher{}.
func (t *PipelineStatsManager) GetStats() []Stats {
	statsList := make([]Stats, 0)
	for _, sw := range t.watchers() {
		statsList = append(statsList, sw.RenderStats())
	}
	return statsList
}
