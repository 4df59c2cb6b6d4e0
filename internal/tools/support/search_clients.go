package support

import (
	"context"
	"time"

	"studiodesk/internal/domain/client"
	"studiodesk/internal/tools/shared"
)

// NewSearchClientsTool finds clients by partial name, email or phone
func NewSearchClientsTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "search_clients",
		Description: "Search for clients by name, email, or phone. Matching is case-insensitive and partial; given fields must all match. Returns at most 20 clients.",
		Category:    shared.CategorySupport,
		ReadOnly:    true,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"name":  shared.StringProp("Part of the client's name"),
			"email": shared.StringProp("Part of the client's email"),
			"phone": shared.StringProp("Part of the client's phone number"),
		}),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		filter := client.Filter{
			Name:  args.OptionalString("name"),
			Email: args.OptionalString("email"),
			Phone: args.OptionalString("phone"),
		}
		// A bare "query" is treated as a name search
		if filter.IsEmpty() {
			filter.Name = args.OptionalString("query")
		}
		return deps.Support.SearchClients(ctx, filter)
	}, deps).
		OnError(func(shared.Args) string { return "Error searching for clients" }).
		WithTimeout(10*time.Second).
		WithRetry(2, 200*time.Millisecond).
		WithStats().
		Build()
}
