package dashboard

import (
	"context"
	"time"

	"studiodesk/internal/tools/shared"
)

// NewCountActiveInactiveClientsTool reports active and inactive client counts
func NewCountActiveInactiveClientsTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "count_active_inactive_clients",
		Description: "Count number of active and inactive clients.",
		Category:    shared.CategoryDashboard,
		ReadOnly:    true,
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, _ shared.Args) (interface{}, error) {
		return deps.Dashboard.ClientCounts(ctx)
	}, deps).
		OnError(func(shared.Args) string { return "Error counting clients" }).
		WithTimeout(15*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewGetNewClientsThisMonthTool counts registrations since the first of the month
func NewGetNewClientsThisMonthTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_new_clients_this_month",
		Description: "Count new client registrations for the current month.",
		Category:    shared.CategoryDashboard,
		ReadOnly:    true,
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, _ shared.Args) (interface{}, error) {
		count, err := deps.Dashboard.NewClientsThisMonth(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"new_clients_this_month": count}, nil
	}, deps).
		OnError(func(shared.Args) string { return "Error retrieving new clients" }).
		WithTimeout(15*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}
