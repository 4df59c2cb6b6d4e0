package postgres

import (
	"context"
	"time"

	"studiodesk/internal/domain/memory"
	"studiodesk/pkg/errors"
)

// Compile-time check
var _ memory.Repository = (*MemoryRepository)(nil)

const memorySchema = `
CREATE TABLE IF NOT EXISTS memory_sessions (
	id         BIGSERIAL PRIMARY KEY,
	session_id TEXT        NOT NULL,
	message    TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_memory_sessions_session_created
	ON memory_sessions (session_id, created_at DESC, id DESC);
`

// MemoryRepository implements memory.Repository using sqlx.
// Selected with MEMORY_BACKEND=postgres.
type MemoryRepository struct {
	db DBTX
}

// NewMemoryRepository creates a new memory repository.
// Accepts DBTX so tests can run it inside a rolled back transaction.
func NewMemoryRepository(db DBTX) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// EnsureSchema creates the memory_sessions table and its index when missing
func (r *MemoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, memorySchema); err != nil {
		return errors.Wrap(err, "failed to create memory_sessions table")
	}
	return nil
}

// Append inserts one message
func (r *MemoryRepository) Append(ctx context.Context, entry memory.Entry) error {
	query := `
		INSERT INTO memory_sessions (session_id, message, created_at)
		VALUES (:session_id, :message, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return errors.Wrapf(err, "append memory for session %s", entry.SessionID)
	}
	return nil
}

// Recent selects the newest rows and returns them oldest first
func (r *MemoryRepository) Recent(ctx context.Context, sessionID string, limit int) ([]memory.Entry, error) {
	query := `
		SELECT session_id, message, created_at FROM (
			SELECT id, session_id, message, created_at
			FROM memory_sessions
			WHERE session_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC`

	entries := make([]memory.Entry, 0, limit)
	if err := r.db.SelectContext(ctx, &entries, query, sessionID, limit); err != nil {
		return nil, errors.Wrapf(err, "read memory for session %s", sessionID)
	}
	return entries, nil
}

// Prune keeps the keep newest rows of the session
func (r *MemoryRepository) Prune(ctx context.Context, sessionID string, keep int) (int64, error) {
	query := `
		DELETE FROM memory_sessions
		WHERE session_id = $1
		  AND id NOT IN (
			SELECT id FROM memory_sessions
			WHERE session_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		  )`

	result, err := r.db.ExecContext(ctx, query, sessionID, keep)
	if err != nil {
		return 0, errors.Wrapf(err, "prune memory for session %s", sessionID)
	}
	return result.RowsAffected()
}

// DeleteOlderThan removes rows of every session created before cutoff
func (r *MemoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memory_sessions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "delete expired memory")
	}
	return result.RowsAffected()
}
