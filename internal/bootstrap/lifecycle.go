package bootstrap

import (
	"context"
	"sync"
	"time"

	chclient "studiodesk/internal/adapters/clickhouse"
	"studiodesk/internal/adapters/kafka"
	mongoclient "studiodesk/internal/adapters/mongo"
	pgclient "studiodesk/internal/adapters/postgres"
	redisclient "studiodesk/internal/adapters/redis"
	"studiodesk/internal/api"
	"studiodesk/internal/workers"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{shutdownTimeout: 60 * time.Second}
}

// ShutdownTargets lists what Shutdown tears down. Nil entries are skipped.
type ShutdownTargets struct {
	WG           *sync.WaitGroup
	HTTPServer   *api.Server
	Scheduler    *workers.Scheduler
	Producer     *kafka.Producer
	Mongo        *mongoclient.Client
	PG           *pgclient.Client
	CH           *chclient.Client
	Redis        *redisclient.Client
	ErrorTracker errors.Tracker
}

// Shutdown tears components down in dependency order:
// 1. No new requests accepted
// 2. Workers and consumers finish their current item (the app context is already cancelled)
// 3. Producer closes after everything that publishes
// 4. Errors and logs flushed
// 5. Database connections last
func (l *Lifecycle) Shutdown(t ShutdownTargets, log *logger.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer cancel()

	log.Info("[1/6] Stopping HTTP server...")
	if t.HTTPServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		if err := t.HTTPServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}

	log.Info("[2/6] Stopping background workers...")
	if t.Scheduler != nil && t.Scheduler.IsRunning() {
		stopCtx, stopCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		if err := t.Scheduler.Stop(stopCtx); err != nil {
			log.Errorw("Workers shutdown failed", "error", err)
		} else {
			log.Info("✓ Workers stopped")
		}
		stopCancel()
	}

	log.Info("[3/6] Waiting for consumer goroutines...")
	if t.WG != nil {
		l.waitForGoroutines(t.WG, 15*time.Second, log)
	}

	log.Info("[4/6] Closing Kafka producer...")
	if t.Producer != nil {
		if err := t.Producer.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
		} else {
			log.Info("✓ Kafka producer closed")
		}
	}

	log.Info("[5/6] Flushing error tracker and logs...")
	l.flushErrorTracker(shutdownCtx, t.ErrorTracker, log)
	_ = logger.Sync()

	log.Info("[6/6] Closing database connections...")
	l.closeDatabases(shutdownCtx, t, log)

	log.Info("✅ Graceful shutdown complete")
}

func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", "error", err)
	}
}

func (l *Lifecycle) closeDatabases(ctx context.Context, t ShutdownTargets, log *logger.Logger) {
	var errs errors.MultiError

	if t.PG != nil {
		if err := t.PG.Close(); err != nil {
			errs.Add(errors.Wrap(err, "postgres"))
		}
	}
	if t.CH != nil {
		if err := t.CH.Close(); err != nil {
			errs.Add(errors.Wrap(err, "clickhouse"))
		}
	}
	if t.Redis != nil {
		if err := t.Redis.Close(); err != nil {
			errs.Add(errors.Wrap(err, "redis"))
		}
	}
	if t.Mongo != nil {
		if err := t.Mongo.Close(ctx); err != nil {
			errs.Add(errors.Wrap(err, "mongodb"))
		}
	}

	if err := errs.ToError(); err != nil {
		log.Errorw("Database close errors", "error", err)
		return
	}
	log.Info("✓ Database connections closed")
}
