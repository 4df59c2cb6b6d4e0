package class

import (
	"context"
	"time"
)

// Repository defines class persistence operations
type Repository interface {
	GetByID(ctx context.Context, classID string) (*Class, error)

	// FindByName returns the first class with exactly this name, or errors.ErrNotFound
	FindByName(ctx context.Context, name string) (*Class, error)

	// ListFrom returns classes dated at or after from, earliest first
	ListFrom(ctx context.Context, from time.Time, limit int) ([]*Class, error)

	// ListByInstructor matches a case-insensitive substring of the instructor name
	ListByInstructor(ctx context.Context, instructor string, limit int) ([]*Class, error)
}
