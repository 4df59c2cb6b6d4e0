package attendance

import "context"

// Repository defines attendance persistence operations
type Repository interface {
	// TallyByClass counts all and attended records for the class
	TallyByClass(ctx context.Context, classID string) (Tally, error)
}
