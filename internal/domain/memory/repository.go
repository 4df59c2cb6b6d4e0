package memory

import (
	"context"
	"time"
)

// Repository persists the append-only per-session message log
type Repository interface {
	Append(ctx context.Context, entry Entry) error

	// Recent returns up to limit newest entries of the session, oldest first
	Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error)

	// Prune deletes all but the keep newest entries of the session
	Prune(ctx context.Context, sessionID string, keep int) (int64, error)

	// DeleteOlderThan removes entries of every session written before cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
