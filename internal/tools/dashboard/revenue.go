package dashboard

import (
	"context"
	"time"

	"studiodesk/internal/tools/shared"
)

// NewGetTotalRevenueTool sums every recorded payment
func NewGetTotalRevenueTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_total_revenue",
		Description: "Fetch total revenue from all completed payments.",
		Category:    shared.CategoryDashboard,
		ReadOnly:    true,
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, _ shared.Args) (interface{}, error) {
		total, err := deps.Dashboard.TotalRevenue(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"total_revenue": total, "formatted": shared.Money(total)}, nil
	}, deps).
		OnError(func(shared.Args) string { return "Error calculating total revenue" }).
		WithTimeout(15*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewGetOutstandingPaymentsTool sums pending order amounts
func NewGetOutstandingPaymentsTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_outstanding_payments",
		Description: "Calculate all unpaid/pending order totals.",
		Category:    shared.CategoryDashboard,
		ReadOnly:    true,
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, _ shared.Args) (interface{}, error) {
		total, err := deps.Dashboard.OutstandingPayments(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"outstanding_payments": total, "formatted": shared.Money(total)}, nil
	}, deps).
		OnError(func(shared.Args) string { return "Error retrieving outstanding payments" }).
		WithTimeout(15*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewGetTopServicesTool lists the five services with the highest order revenue
func NewGetTopServicesTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_top_services",
		Description: "List top 5 services by revenue.",
		Category:    shared.CategoryDashboard,
		ReadOnly:    true,
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, _ shared.Args) (interface{}, error) {
		return deps.Dashboard.TopServices(ctx)
	}, deps).
		OnError(func(shared.Args) string { return "Error retrieving top services" }).
		WithTimeout(15*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}
