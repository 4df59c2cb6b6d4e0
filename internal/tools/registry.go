package tools

import (
	"context"
	"fmt"
	"sync"

	"studiodesk/internal/tools/shared"
	"studiodesk/pkg/errors"
)

// Registry stores tools by name for discovery and lookup.
// It is shared by the agent executor, the MCP bridge and tests.
type Registry struct {
	tools map[string]Tool
	order []string
	mu    sync.RWMutex
}

// NewRegistry constructs an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(t Tool) error {
	name := t.Definition().Name
	if name == "" {
		return errors.Wrap(errors.ErrInvalidInput, "tool without a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "tool %s", name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name if registered.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the names of all registered tools in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// ByCategory returns the tools of one category in registration order.
func (r *Registry) ByCategory(category Category) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Tool
	for _, name := range r.order {
		if t := r.tools[name]; t.Definition().Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Definitions resolves tool names to their definitions. Unknown names are an error.
func (r *Registry) Definitions(names ...string) ([]Definition, error) {
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		t, ok := r.Get(name)
		if !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "tool %s", name)
		}
		defs = append(defs, t.Definition())
	}
	return defs, nil
}

// Execute decodes rawArgs and runs the named tool. The returned text is always
// suitable to hand back to the model, even when err is non-nil.
func (r *Registry) Execute(ctx context.Context, name, rawArgs string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		err := errors.Wrapf(errors.ErrNotFound, "unknown tool %s", name)
		return fmt.Sprintf("Error: %v", err), err
	}

	args, err := shared.ParseArgs(rawArgs)
	if err != nil {
		return fmt.Sprintf("Error calling %s: %v", name, err), err
	}

	return t.Execute(ctx, args)
}
