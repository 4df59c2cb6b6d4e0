// Package support holds the tools available to the support agent.
package support

import "studiodesk/internal/tools/shared"

// Tools builds every support tool, reads first
func Tools(deps shared.Deps) []shared.Tool {
	return []shared.Tool{
		NewSearchClientsTool(deps),
		NewGetOrdersByClientTool(deps),
		NewGetOrderByIDTool(deps),
		NewFilterOrdersByStatusTool(deps),
		NewGetPaymentDetailsTool(deps),
		NewCalculatePendingDuesTool(deps),
		NewListUpcomingClassesTool(deps),
		NewFilterClassesByInstructorTool(deps),
		NewCreateClientEnquiryTool(deps),
		NewCreateOrderTool(deps),
	}
}
