package shared

import "context"

// Category groups tools by the agent that uses them
type Category string

const (
	CategorySupport   Category = "support"
	CategoryDashboard Category = "dashboard"
)

// Definition describes a tool's metadata for registration, function declarations and documentation.
type Definition struct {
	Name        string
	Description string
	Category    Category
	// Parameters is a JSON schema object describing the arguments
	Parameters map[string]interface{}
	// ReadOnly tools may be retried
	ReadOnly bool
}

// Tool represents a callable capability exposed to agents.
type Tool interface {
	Definition() Definition
	// Execute runs the tool and returns the text handed back to the model.
	// A non-nil error means the call failed; the text then carries the failure wording.
	Execute(ctx context.Context, args Args) (string, error)
}

// ToolFunc is the function signature for tool execution.
// Used by middleware to wrap tool functions.
type ToolFunc func(ctx context.Context, args Args) (interface{}, error)
