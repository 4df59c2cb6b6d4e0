package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// Consumer reads one topic as part of a consumer group
type Consumer struct {
	reader *kafka.Reader
	topic  string
	log    *logger.Logger
}

// ConsumerConfig holds consumer configuration. Zero byte limits pick defaults.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
}

// NewConsumer creates a group reader starting from the earliest uncommitted offset
func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 1 << 20
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        time.Second,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	log := logger.Get().With("component", "kafka_consumer", "topic", cfg.Topic)
	log.Infow("Kafka consumer created", "brokers", cfg.Brokers, "group_id", cfg.GroupID)

	return &Consumer{reader: reader, topic: cfg.Topic, log: log}
}

// ReadMessage blocks until a message arrives or ctx is cancelled.
// A cancelled ctx is reported as ctx.Err() so callers can tell shutdown from broker failures.
func (c *Consumer) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}

	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		return kafka.Message{}, errors.Wrapf(err, "read %s", c.topic)
	}
	return msg, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
