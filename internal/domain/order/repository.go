package order

import "context"

// Repository defines order persistence and aggregation operations
type Repository interface {
	GetByID(ctx context.Context, orderID string) (*Order, error)

	ListByClient(ctx context.Context, clientID string, limit int) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]*Order, error)

	// ListByClientAndStatus is unbounded; used for sums that must see every order
	ListByClientAndStatus(ctx context.Context, clientID string, status Status) ([]*Order, error)

	// SumAmountByStatus returns 0 when no order matches
	SumAmountByStatus(ctx context.Context, status Status) (float64, error)

	// CountByService groups by service_name, most ordered first. limit <= 0 returns every group.
	CountByService(ctx context.Context, limit int) ([]ServiceCount, error)

	// RevenueByService sums amount per service_name, highest first
	RevenueByService(ctx context.Context, limit int) ([]ServiceRevenue, error)

	// Create returns errors.ErrAlreadyExists on a duplicate order_id
	Create(ctx context.Context, o *Order) error
}
