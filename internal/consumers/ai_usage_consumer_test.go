package consumers

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/domain/ai_usage"
	"studiodesk/internal/events"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// scriptedReader hands out messages in order, then blocks until ctx is cancelled
type scriptedReader struct {
	mu       sync.Mutex
	messages []kafka.Message
	drained  chan struct{}
	closed   bool
}

func newScriptedReader(messages ...kafka.Message) *scriptedReader {
	return &scriptedReader{messages: messages, drained: make(chan struct{})}
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type recordingStore struct {
	mu      sync.Mutex
	rows    []*ai_usage.UsageLog
	started bool
	stopped bool
	err     error
}

func (s *recordingStore) Start(context.Context) { s.started = true }

func (s *recordingStore) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *recordingStore) Store(_ context.Context, usage *ai_usage.UsageLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, usage)
	return nil
}

func envelopeMessage(t *testing.T, eventType string, payload interface{}) kafka.Message {
	t.Helper()
	env, err := events.NewEnvelope(eventType, "s1", payload)
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return kafka.Message{Topic: events.TopicFor(eventType), Value: data}
}

func runUntilDrained(t *testing.T, c *AIUsageConsumer, reader *scriptedReader) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain messages")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestAIUsageConsumer_StoresUsageRows(t *testing.T) {
	usage := ai_usage.UsageLog{
		EventID:     "evt-1",
		SessionID:   "s1",
		Agent:       "support",
		Provider:    "gemini",
		Model:       "gemini-1.5-flash",
		TotalTokens: 120,
		Iterations:  2,
		Success:     true,
	}
	reader := newScriptedReader(
		envelopeMessage(t, events.TypeAIUsage, usage),
		envelopeMessage(t, events.TypeAIUsage, ai_usage.UsageLog{Agent: "dashboard"}),
	)
	store := &recordingStore{}
	c := NewAIUsageConsumer(reader, store, logger.Nop())

	runUntilDrained(t, c, reader)

	require.Len(t, store.rows, 2)
	assert.Equal(t, "evt-1", store.rows[0].EventID)
	assert.Equal(t, uint32(120), store.rows[0].TotalTokens)
	assert.Equal(t, "support", store.rows[0].Agent)

	// missing id and timestamp come from the envelope
	assert.NotEmpty(t, store.rows[1].EventID)
	assert.False(t, store.rows[1].Timestamp.IsZero())

	assert.True(t, store.started)
	assert.True(t, store.stopped)
	assert.True(t, reader.closed)
	assert.Equal(t, int64(2), c.processed.Load())
}

func TestAIUsageConsumer_SkipsOtherEventsAndSurvivesBadMessages(t *testing.T) {
	reader := newScriptedReader(
		kafka.Message{Topic: "studio.ai_usage", Value: []byte("not json")},
		envelopeMessage(t, events.TypeQueryReceived, events.NewQueryReceived("s1", "support", "hi")),
		envelopeMessage(t, events.TypeAIUsage, ai_usage.UsageLog{Agent: "support"}),
	)
	store := &recordingStore{}
	c := NewAIUsageConsumer(reader, store, logger.Nop())

	runUntilDrained(t, c, reader)

	require.Len(t, store.rows, 1)
	assert.Equal(t, int64(1), c.failed.Load())
	assert.Equal(t, int64(1), c.skipped.Load())
	assert.Equal(t, int64(1), c.processed.Load())
}

func TestAIUsageConsumer_StoreFailureIsCounted(t *testing.T) {
	reader := newScriptedReader(envelopeMessage(t, events.TypeAIUsage, ai_usage.UsageLog{Agent: "support"}))
	store := &recordingStore{err: errors.ErrUnavailable}
	c := NewAIUsageConsumer(reader, store, logger.Nop())

	runUntilDrained(t, c, reader)

	assert.Empty(t, store.rows)
	assert.Equal(t, int64(1), c.failed.Load())
}
