package consumers

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"studiodesk/internal/domain/ai_usage"
	"studiodesk/internal/events"
	"studiodesk/internal/metrics"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// MessageReader is the part of the Kafka consumer adapter used here
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// UsageStore buffers usage rows and flushes them in the background
type UsageStore interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Store(ctx context.Context, usage *ai_usage.UsageLog) error
}

// AIUsageConsumer reads AI usage events from Kafka and writes to ClickHouse in batches
type AIUsageConsumer struct {
	consumer MessageReader
	store    UsageStore
	log      *logger.Logger

	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// NewAIUsageConsumer creates a new AI usage consumer
func NewAIUsageConsumer(consumer MessageReader, store UsageStore, log *logger.Logger) *AIUsageConsumer {
	return &AIUsageConsumer{
		consumer: consumer,
		store:    store,
		log:      log.With("component", "ai_usage_consumer"),
	}
}

// Start consumes until ctx is cancelled. The batch writer is flushed and the reader closed on exit.
func (c *AIUsageConsumer) Start(ctx context.Context) error {
	c.log.Info("Starting AI usage consumer...")

	c.store.Start(ctx)

	defer func() {
		if err := c.consumer.Close(); err != nil {
			c.log.Errorw("Failed to close AI usage consumer", "error", err)
		}
	}()

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.store.Stop(stopCtx); err != nil {
			c.log.Errorw("Failed to stop AI usage batch writer", "error", err)
		}
		c.LogStats()
	}()

	for {
		msg, err := c.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("AI usage consumer stopping (context cancelled)")
				return nil
			}
			c.log.Debugw("Failed to read AI usage event", "error", err)
			continue
		}

		// The current message finishes even when shutdown starts mid-way
		processCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		err = c.handleUsageEvent(processCtx, msg)
		cancel()

		metrics.RecordKafkaMessage(msg.Topic, err)
		if err != nil {
			c.failed.Add(1)
			c.log.Errorw("Failed to handle AI usage event",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
		}

		if ctx.Err() != nil {
			c.log.Info("AI usage consumer stopping after processing current message")
			return nil
		}
	}
}

// handleUsageEvent decodes one envelope and buffers its row
func (c *AIUsageConsumer) handleUsageEvent(ctx context.Context, msg kafka.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return errors.Wrap(err, "unmarshal event envelope")
	}
	if env.Type != events.TypeAIUsage {
		c.skipped.Add(1)
		c.log.Debugw("Skipping non-usage event", "type", env.Type)
		return nil
	}

	usage := &ai_usage.UsageLog{}
	if err := env.Decode(usage); err != nil {
		return err
	}
	if usage.EventID == "" {
		usage.EventID = env.ID
	}
	if usage.Timestamp.IsZero() {
		usage.Timestamp = env.OccurredAt
	}

	if err := c.store.Store(ctx, usage); err != nil {
		return errors.Wrap(err, "failed to store AI usage log")
	}
	c.processed.Add(1)

	c.log.Debugw("AI usage event buffered for batch insert",
		"agent", usage.Agent,
		"provider", usage.Provider,
		"model", usage.Model,
		"tokens", usage.TotalTokens,
	)
	return nil
}

// LogStats logs how many events were stored, skipped and failed so far
func (c *AIUsageConsumer) LogStats() {
	c.log.Infow("AI usage consumer stats",
		"processed", c.processed.Load(),
		"skipped", c.skipped.Load(),
		"failed", c.failed.Load(),
	)
}
