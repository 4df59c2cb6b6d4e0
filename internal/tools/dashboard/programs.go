package dashboard

import (
	"context"
	"time"

	"studiodesk/internal/tools/shared"
)

// NewGetEnrollmentTrendsTool counts orders per service
func NewGetEnrollmentTrendsTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_enrollment_trends",
		Description: "Analyze most enrolled courses/classes by number of orders.",
		Category:    shared.CategoryDashboard,
		ReadOnly:    true,
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, _ shared.Args) (interface{}, error) {
		return deps.Dashboard.EnrollmentTrends(ctx)
	}, deps).
		OnError(func(shared.Args) string { return "Error retrieving enrollment trends" }).
		WithTimeout(15*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewGetCourseCompletionRatesTool groups courses by status
func NewGetCourseCompletionRatesTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_course_completion_rates",
		Description: "Fetch course counts grouped by completion status.",
		Category:    shared.CategoryDashboard,
		ReadOnly:    true,
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, _ shared.Args) (interface{}, error) {
		return deps.Dashboard.CourseCompletionRates(ctx)
	}, deps).
		OnError(func(shared.Args) string { return "Error retrieving completion rates" }).
		WithTimeout(15*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewGetAttendancePercentageTool reports the attended share of a class's records
func NewGetAttendancePercentageTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "get_attendance_percentage",
		Description: "Return attendance % for a specific class name.",
		Category:    shared.CategoryDashboard,
		ReadOnly:    true,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"class_name": shared.StringProp("Exact class name, e.g. Morning Yoga"),
		}, "class_name"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		name, err := args.String("class_name")
		if err != nil {
			return nil, err
		}
		return deps.Dashboard.AttendancePercentage(ctx, name)
	}, deps).
		OnError(func(shared.Args) string { return "Error calculating attendance percentage" }).
		NotFound("Class not found").
		WithTimeout(15*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}
