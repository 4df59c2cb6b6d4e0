package shared

import "context"

type invocationKey struct{}

// Invocation identifies the agent run a tool call belongs to
type Invocation struct {
	Agent     string
	SessionID string
}

// InvocationFrom returns the invocation carried by ctx. ok is false for direct calls (HTTP, MCP).
func InvocationFrom(ctx context.Context) (inv Invocation, ok bool) {
	inv, ok = ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}

// WithAgent sets the agent of the invocation on ctx, keeping its session
func WithAgent(ctx context.Context, agent string) context.Context {
	inv, _ := InvocationFrom(ctx)
	inv.Agent = agent
	return context.WithValue(ctx, invocationKey{}, inv)
}

// WithSession sets the session of the invocation on ctx, keeping its agent
func WithSession(ctx context.Context, sessionID string) context.Context {
	inv, _ := InvocationFrom(ctx)
	inv.SessionID = sessionID
	return context.WithValue(ctx, invocationKey{}, inv)
}
