package client

import (
	"context"
	"time"
)

// Repository defines client persistence operations
type Repository interface {
	// Search returns up to limit clients whose fields contain every non-empty filter value, case-insensitively
	Search(ctx context.Context, filter Filter, limit int) ([]*Client, error)

	// GetByID returns errors.ErrNotFound when no client has the id
	GetByID(ctx context.Context, clientID string) (*Client, error)

	CountByStatus(ctx context.Context, status Status) (int64, error)

	// CountRegisteredSince counts clients with registration_date >= since
	CountRegisteredSince(ctx context.Context, since time.Time) (int64, error)

	// Create returns errors.ErrAlreadyExists on a duplicate client_id
	Create(ctx context.Context, c *Client) error
}
