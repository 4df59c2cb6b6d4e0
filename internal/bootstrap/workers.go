package bootstrap

import (
	"studiodesk/internal/consumers"
	"studiodesk/internal/workers"
)

// ========================================
// Phase 8: Background Processing
// ========================================

// MustInitBackground prepares the worker scheduler and the usage consumer
func (c *Container) MustInitBackground() {
	c.Background.Scheduler = workers.NewScheduler(c.Log)
	c.Background.Scheduler.RegisterWorker(
		workers.NewMemorySweepWorker(c.Services.Memory, c.Config.Memory.SweepInterval, c.Log),
	)

	// Usage analytics need both ends: Kafka to read from and ClickHouse to write to
	if c.Adapters.AIUsageConsumer != nil && c.Repos.AIUsage != nil {
		c.Background.AIUsageSvc = consumers.NewAIUsageConsumer(c.Adapters.AIUsageConsumer, c.Repos.AIUsage, c.Log)
	}

	c.Log.Infow("✓ Background processing configured",
		"workers", len(c.Background.Scheduler.Workers()),
		"ai_usage_consumer", c.Background.AIUsageSvc != nil,
	)
}

func (c *Container) startBackground() error {
	if c.Background.Scheduler != nil {
		if err := c.Background.Scheduler.Start(c.Context); err != nil {
			return err
		}
	}

	if svc := c.Background.AIUsageSvc; svc != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := svc.Start(c.Context); err != nil && c.Context.Err() == nil {
				c.Log.Errorw("AI usage consumer failed", "error", err)
			}
		}()
		c.Log.Info("✓ AI usage consumer started")
	}
	return nil
}
