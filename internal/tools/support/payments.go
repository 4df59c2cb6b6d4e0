package support

import (
	"context"
	"time"

	"studiodesk/internal/tools/shared"
)

// NewGetPaymentDetailsTool fetches the payment recorded against an order
func NewGetPaymentDetailsTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_payment_details",
		Description: "Fetch payment details for an order.",
		Category:    shared.CategorySupport,
		ReadOnly:    true,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"order_id": shared.StringProp("Order id the payment was made for"),
		}, "order_id"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		orderID, err := args.String("order_id")
		if err != nil {
			return nil, err
		}
		return deps.Support.GetPaymentDetails(ctx, orderID)
	}, deps).
		OnError(func(args shared.Args) string {
			return "Error retrieving payment details for order " + args.OptionalString("order_id")
		}).
		NotFound("Payment not found").
		WithTimeout(10*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewCalculatePendingDuesTool sums a client's pending orders
func NewCalculatePendingDuesTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "calculate_pending_dues",
		Description: "Calculate how much a client owes across all pending orders.",
		Category:    shared.CategorySupport,
		ReadOnly:    true,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"client_id": shared.StringProp("Client id"),
		}, "client_id"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		clientID, err := args.String("client_id")
		if err != nil {
			return nil, err
		}
		dues, err := deps.Support.CalculatePendingDues(ctx, clientID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"client_id":    dues.ClientID,
			"pending_dues": dues.Amount,
			"formatted":    shared.Money(dues.Amount),
		}, nil
	}, deps).
		OnError(func(args shared.Args) string {
			return "Error calculating pending dues for client " + args.OptionalString("client_id")
		}).
		WithTimeout(10*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}
