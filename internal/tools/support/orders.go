package support

import (
	"context"
	"time"

	"studiodesk/internal/domain/order"
	"studiodesk/internal/tools/shared"
)

// NewGetOrdersByClientTool lists a client's orders
func NewGetOrdersByClientTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_orders_by_client",
		Description: "Get all orders for a client (at most 20).",
		Category:    shared.CategorySupport,
		ReadOnly:    true,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"client_id": shared.StringProp("Client id, e.g. CLIENT_1A2B3C4D"),
		}, "client_id"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		clientID, err := args.String("client_id")
		if err != nil {
			return nil, err
		}
		return deps.Support.GetOrdersByClient(ctx, clientID)
	}, deps).
		OnError(func(args shared.Args) string {
			return "Error retrieving orders for client " + args.OptionalString("client_id")
		}).
		WithTimeout(10*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewGetOrderByIDTool fetches a single order
func NewGetOrderByIDTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_order_by_id",
		Description: "Retrieve an order using the order ID.",
		Category:    shared.CategorySupport,
		ReadOnly:    true,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"order_id": shared.StringProp("Order id, e.g. ORDER_1A2B3C4D"),
		}, "order_id"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		orderID, err := args.String("order_id")
		if err != nil {
			return nil, err
		}
		return deps.Support.GetOrderByID(ctx, orderID)
	}, deps).
		OnError(func(args shared.Args) string {
			return "Error retrieving order " + args.OptionalString("order_id")
		}).
		NotFound("Order not found").
		WithTimeout(10*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewFilterOrdersByStatusTool lists orders with a given payment status
func NewFilterOrdersByStatusTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "filter_orders_by_status",
		Description: "List orders by their payment status (at most 20).",
		Category:    shared.CategorySupport,
		ReadOnly:    true,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"status": shared.EnumProp("Order status", string(order.StatusPending), string(order.StatusPaid), string(order.StatusCancelled)),
		}, "status"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		status, err := args.String("status")
		if err != nil {
			return nil, err
		}
		return deps.Support.FilterOrdersByStatus(ctx, status)
	}, deps).
		OnError(func(args shared.Args) string {
			return "Error filtering orders by status " + args.OptionalString("status")
		}).
		WithTimeout(10*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}
