package events

import (
	"context"
	"sync"

	"studiodesk/internal/adapters/kafka"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// Publisher publishes domain events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, env *Envelope) error
}

// Emit builds an envelope and publishes it, logging instead of returning failures
func Emit(ctx context.Context, p Publisher, log *logger.Logger, eventType, key string, payload interface{}) {
	if p == nil {
		return
	}

	env, err := NewEnvelope(eventType, key, payload)
	if err != nil {
		log.Warnf("Failed to build %s event: %v", eventType, err)
		return
	}
	if err := p.Publish(ctx, env); err != nil {
		log.Warnf("Failed to publish %s event: %v", eventType, err)
	}
}

// KafkaPublisher publishes events to Kafka
type KafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewKafkaPublisher creates a new event publisher
func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log.With("component", "event_publisher"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, env *Envelope) error {
	if env == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil envelope")
	}

	topic := TopicFor(env.Type)
	headers := map[string]string{"event_type": env.Type, "event_id": env.ID}
	if err := p.producer.Publish(ctx, topic, env.Key, env, headers); err != nil {
		return errors.Wrapf(err, "publish %s to %s", env.Type, topic)
	}
	return nil
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Envelope) error { return nil }

// RecordingPublisher keeps published envelopes in memory
type RecordingPublisher struct {
	mu     sync.Mutex
	events []*Envelope
}

func (r *RecordingPublisher) Publish(_ context.Context, env *Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, env)
	return nil
}

// Events returns a copy of everything published so far
func (r *RecordingPublisher) Events() []*Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Envelope, len(r.events))
	copy(out, r.events)
	return out
}

// OfType filters recorded envelopes by event type
func (r *RecordingPublisher) OfType(eventType string) []*Envelope {
	var out []*Envelope
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NoopPublisher{}
	_ Publisher = (*RecordingPublisher)(nil)
)
