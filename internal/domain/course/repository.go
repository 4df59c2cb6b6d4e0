package course

import "context"

// Repository defines course persistence operations
type Repository interface {
	GetByID(ctx context.Context, courseID string) (*Course, error)

	// CountByStatus groups courses by status
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}
