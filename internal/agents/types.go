package agents

import (
	"context"
	"time"

	"studiodesk/internal/adapters/ai"
	"studiodesk/internal/tools/shared"
)

// AgentType enumerates supported agent specializations.
type AgentType string

const (
	AgentSupport   AgentType = "support"
	AgentDashboard AgentType = "dashboard"
)

func (t AgentType) String() string {
	return string(t)
}

// Runner answers one prompt with the named agent.
type Runner interface {
	Run(ctx context.Context, agentType AgentType, prompt string) (*Result, error)
}

// Result is the outcome of one agent run
type Result struct {
	Agent    AgentType
	Response string
	Model    string

	Iterations int
	ToolCalls  int
	// Exhausted is set when the iteration budget ran out and the answer came from the final no-tools call
	Exhausted bool

	Usage    ai.Usage
	Duration time.Duration
}

// WithSession tags ctx with the caller's session so tool telemetry and usage records carry it
func WithSession(ctx context.Context, sessionID string) context.Context {
	return shared.WithSession(ctx, sessionID)
}

// SessionFromContext returns the session set by WithSession, or ""
func SessionFromContext(ctx context.Context) string {
	inv, _ := shared.InvocationFrom(ctx)
	return inv.SessionID
}
