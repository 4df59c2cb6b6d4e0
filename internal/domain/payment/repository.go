package payment

import "context"

// Repository defines payment persistence operations
type Repository interface {
	// GetByOrderID returns errors.ErrNotFound when the order has no payment
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)

	// SumAmount totals every payment; 0 when there are none
	SumAmount(ctx context.Context) (float64, error)
}
