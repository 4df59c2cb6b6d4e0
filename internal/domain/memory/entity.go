package memory

import "time"

// Entry is one remembered user message of a session
type Entry struct {
	SessionID string    `bson:"session_id" db:"session_id" json:"session_id"`
	Message   string    `bson:"message" db:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" db:"created_at" json:"timestamp"`
}

// Retention bounds how much history is kept. Zero disables a rule.
type Retention struct {
	MaxPerSession int
	MaxAge        time.Duration
}
