package ai_usage

import "context"

// Repository stores usage logs for offline analysis
type Repository interface {
	Store(ctx context.Context, log *UsageLog) error
}
