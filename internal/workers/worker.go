// Package workers runs periodic maintenance jobs such as the session memory sweep.
package workers

import (
	"context"
	"sync"
	"time"

	"studiodesk/pkg/logger"
)

// Worker is a periodic job. Run performs one iteration; the scheduler repeats it every Interval.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
	Interval() time.Duration
	Enabled() bool
}

// HealthReporter is implemented by workers that track their own run history
type HealthReporter interface {
	Health() Health
	RecordRun(duration time.Duration)
	RecordError(err error, duration time.Duration)
}

// Health summarises the run history of a worker
type Health struct {
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	AvgDuration time.Duration
	Enabled     bool
}

// BaseWorker carries the name, interval and run history shared by all workers
type BaseWorker struct {
	name     string
	interval time.Duration
	log      *logger.Logger

	mu            sync.RWMutex
	enabled       bool
	lastRun       time.Time
	lastError     error
	runCount      int64
	errorCount    int64
	totalDuration time.Duration
}

// NewBaseWorker creates a base worker. A non-positive interval disables it.
func NewBaseWorker(name string, interval time.Duration, log *logger.Logger) *BaseWorker {
	if log == nil {
		log = logger.Get()
	}
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  interval > 0,
		log:      log.With("worker", name),
	}
}

func (w *BaseWorker) Name() string {
	return w.name
}

func (w *BaseWorker) Interval() time.Duration {
	return w.interval
}

func (w *BaseWorker) Enabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.enabled
}

// SetEnabled switches the worker on or off before the scheduler starts
func (w *BaseWorker) SetEnabled(enabled bool) {
	w.mu.Lock()
	w.enabled = enabled
	w.mu.Unlock()
	w.log.Infow("Worker enabled state changed", "enabled", enabled)
}

func (w *BaseWorker) Log() *logger.Logger {
	return w.log
}

// Health returns a snapshot of the run history
func (w *BaseWorker) Health() Health {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var avg time.Duration
	if w.runCount > 0 {
		avg = w.totalDuration / time.Duration(w.runCount)
	}
	return Health{
		LastRun:     w.lastRun,
		LastError:   w.lastError,
		RunCount:    w.runCount,
		ErrorCount:  w.errorCount,
		AvgDuration: avg,
		Enabled:     w.enabled,
	}
}

func (w *BaseWorker) RecordRun(duration time.Duration) {
	w.record(nil, duration)
}

func (w *BaseWorker) RecordError(err error, duration time.Duration) {
	w.record(err, duration)
}

func (w *BaseWorker) record(err error, duration time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastRun = time.Now()
	w.runCount++
	w.totalDuration += duration
	w.lastError = err
	if err != nil {
		w.errorCount++
	}
}
