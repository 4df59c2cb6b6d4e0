package support

import (
	"context"
	"time"

	"studiodesk/internal/tools/shared"
)

// NewListUpcomingClassesTool lists scheduled classes from now on
func NewListUpcomingClassesTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "list_upcoming_classes",
		Description: "List upcoming scheduled classes, soonest first (at most 20).",
		Category:    shared.CategorySupport,
		ReadOnly:    true,
		Parameters:  shared.ObjectSchema(nil),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, _ shared.Args) (interface{}, error) {
		return deps.Support.ListUpcomingClasses(ctx)
	}, deps).
		OnError(func(shared.Args) string { return "Error retrieving upcoming classes" }).
		WithTimeout(10*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}

// NewFilterClassesByInstructorTool finds classes by instructor name
func NewFilterClassesByInstructorTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "filter_classes_by_instructor",
		Description: "Find classes conducted by a specific instructor (partial, case-insensitive name match).",
		Category:    shared.CategorySupport,
		ReadOnly:    true,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"instructor_name": shared.StringProp("Instructor name or part of it"),
		}, "instructor_name"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		name := args.OptionalString("instructor_name")
		if name == "" {
			name = args.OptionalString("instructor")
		}
		if name == "" {
			return nil, args.Missing("instructor_name")
		}
		return deps.Support.FilterClassesByInstructor(ctx, name)
	}, deps).
		OnError(func(args shared.Args) string {
			return "Error retrieving classes for instructor " + args.OptionalString("instructor_name")
		}).
		WithTimeout(10*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}
