package workers

import (
	"context"
	"sync"
	"time"

	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// Scheduler runs every registered worker in its own goroutine
type Scheduler struct {
	workers []Worker
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	log     *logger.Logger
	started bool
}

// NewScheduler creates a new worker scheduler
func NewScheduler(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Get()
	}
	return &Scheduler{log: log.With("component", "worker_scheduler")}
}

// RegisterWorker adds a worker. Workers registered after Start are ignored.
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnw("Cannot register worker after scheduler has started", "worker", w.Name())
		return
	}

	s.workers = append(s.workers, w)
	s.log.Infow("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

// Start launches all enabled workers. Each runs once immediately, then on its interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.Wrap(errors.ErrInternal, "scheduler already started")
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	running := 0
	for _, w := range s.workers {
		if !w.Enabled() {
			s.log.Infow("Skipping disabled worker", "worker", w.Name())
			continue
		}
		if w.Interval() <= 0 {
			s.log.Warnw("Skipping worker without an interval", "worker", w.Name(), "interval", w.Interval())
			continue
		}
		running++
		s.wg.Add(1)
		go s.runWorker(runCtx, w)
	}

	s.log.Infow("Worker scheduler started", "workers", running)
	return nil
}

// Stop cancels all workers and waits for them until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrap(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		s.log.Info("All workers stopped")
	case <-ctx.Done():
		err = errors.Wrap(errors.ErrTimeout, "workers did not stop in time")
		s.log.Warn("Worker shutdown timed out")
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return err
}

func (s *Scheduler) runWorker(ctx context.Context, w Worker) {
	defer s.wg.Done()

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	s.execute(ctx, w)
	for {
		select {
		case <-ctx.Done():
			s.log.Debugw("Worker stopped", "worker", w.Name())
			return
		case <-ticker.C:
			s.execute(ctx, w)
		}
	}
}

// execute runs one iteration, recording its outcome and surviving panics
func (s *Scheduler) execute(ctx context.Context, w Worker) {
	start := time.Now()
	reporter, tracked := w.(HealthReporter)

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("Worker panicked", "worker", w.Name(), "panic", r)
			if tracked {
				reporter.RecordError(errors.Wrapf(errors.ErrInternal, "panic: %v", r), time.Since(start))
			}
		}
	}()

	err := w.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		s.log.Errorw("Worker run failed", "worker", w.Name(), "error", err, "duration", elapsed)
		if tracked {
			reporter.RecordError(err, elapsed)
		}
		return
	}

	s.log.Debugw("Worker run completed", "worker", w.Name(), "duration", elapsed)
	if tracked {
		reporter.RecordRun(elapsed)
	}
}

// Workers returns the registered workers
func (s *Scheduler) Workers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Worker, len(s.workers))
	copy(out, s.workers)
	return out
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
