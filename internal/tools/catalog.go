package tools

// Tool names per agent, in the order they are offered to the model
var (
	SupportToolNames = []string{
		"search_clients",
		"get_orders_by_client",
		"get_order_by_id",
		"filter_orders_by_status",
		"get_payment_details",
		"calculate_pending_dues",
		"list_upcoming_classes",
		"filter_classes_by_instructor",
		"create_client_enquiry",
		"create_order",
	}

	DashboardToolNames = []string{
		"get_total_revenue",
		"get_outstanding_payments",
		"count_active_inactive_clients",
		"get_new_clients_this_month",
		"get_enrollment_trends",
		"get_top_services",
		"get_course_completion_rates",
		"get_attendance_percentage",
	}
)

// NamesFor returns the catalogue names of a category
func NamesFor(category Category) []string {
	switch category {
	case CategorySupport:
		return SupportToolNames
	case CategoryDashboard:
		return DashboardToolNames
	default:
		return nil
	}
}
