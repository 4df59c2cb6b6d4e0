// Package dashboard holds the analytics tools available to the dashboard agent.
package dashboard

import "studiodesk/internal/tools/shared"

// Tools builds every dashboard tool
func Tools(deps shared.Deps) []shared.Tool {
	return []shared.Tool{
		NewGetTotalRevenueTool(deps),
		NewGetOutstandingPaymentsTool(deps),
		NewCountActiveInactiveClientsTool(deps),
		NewGetNewClientsThisMonthTool(deps),
		NewGetEnrollmentTrendsTool(deps),
		NewGetTopServicesTool(deps),
		NewGetCourseCompletionRatesTool(deps),
		NewGetAttendancePercentageTool(deps),
	}
}
