package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"studiodesk/internal/adapters/kafka"
	"studiodesk/pkg/errors"
)

// Event types
const (
	TypeClientEnquiryCreated = "client.enquiry_created"
	TypeOrderCreated         = "order.created"
	TypeQueryReceived        = "query.received"
	TypeAIUsage              = "ai.usage"
)

// Envelope is the JSON wire shape of every published event
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Key        string          `json:"-"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope encodes payload. key selects the Kafka partition.
func NewEnvelope(eventType, key string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s payload", eventType)
	}

	return &Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Key:        key,
		Payload:    data,
	}, nil
}

// Decode unmarshals the payload into out
func (e *Envelope) Decode(out interface{}) error {
	if err := json.Unmarshal(e.Payload, out); err != nil {
		return errors.Wrapf(err, "decode %s payload", e.Type)
	}
	return nil
}

// TopicFor routes an event type to its Kafka topic
func TopicFor(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "client."):
		return kafka.TopicClientEvents
	case strings.HasPrefix(eventType, "order."):
		return kafka.TopicOrderEvents
	case strings.HasPrefix(eventType, "query."):
		return kafka.TopicQueryEvents
	default:
		return kafka.TopicAIUsage
	}
}

// ClientEnquiryCreated is published after a new client enquiry is stored
type ClientEnquiryCreated struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// OrderCreated is published after a new order is stored
type OrderCreated struct {
	OrderID     string  `json:"order_id"`
	ClientID    string  `json:"client_id"`
	ServiceID   string  `json:"service_id"`
	ServiceType string  `json:"service_type"`
	Amount      float64 `json:"amount"`
}

// QueryReceived is published for every assistant query
type QueryReceived struct {
	SessionID string `json:"session_id"`
	Agent     string `json:"agent"`
	Prompt    string `json:"prompt"`
}

// sanitizeUTF8 drops invalid byte sequences so payloads survive JSON round trips unchanged
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}

// NewQueryReceived builds the event for an inbound query
func NewQueryReceived(sessionID, agent, prompt string) QueryReceived {
	return QueryReceived{
		SessionID: sessionID,
		Agent:     agent,
		Prompt:    sanitizeUTF8(prompt),
	}
}
