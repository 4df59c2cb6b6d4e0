package workers

import (
	"context"
	"time"

	"studiodesk/pkg/logger"
)

// Sweeper removes expired session memory. Implemented by memory.Service.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// MemorySweepWorker applies the session memory max-age rule on a schedule
type MemorySweepWorker struct {
	*BaseWorker
	sweeper Sweeper
}

// NewMemorySweepWorker creates the sweep worker. A non-positive interval leaves it disabled.
func NewMemorySweepWorker(sweeper Sweeper, interval time.Duration, log *logger.Logger) *MemorySweepWorker {
	return &MemorySweepWorker{
		BaseWorker: NewBaseWorker("memory_sweep", interval, log),
		sweeper:    sweeper,
	}
}

func (w *MemorySweepWorker) Run(ctx context.Context) error {
	removed, err := w.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		w.Log().Infow("Memory sweep removed entries", "removed", removed)
	}
	return nil
}
