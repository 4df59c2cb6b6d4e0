package shared

import (
	"context"
	"fmt"
	"time"

	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// ErrorTextFunc produces the failure prefix for a call, e.g. "Error retrieving order ORD-1"
type ErrorTextFunc func(args Args) string

// ToolBuilder provides a fluent API for creating tools with middleware
type ToolBuilder struct {
	def Definition
	fn  ToolFunc
	log *logger.Logger

	errorText ErrorTextFunc
	notFound  string

	// Middleware options
	withRetry   bool
	retryConfig RetryMiddleware

	withTimeout   bool
	timeoutConfig TimeoutMiddleware

	withStats bool
}

// NewToolBuilder creates a new builder for a tool
func NewToolBuilder(def Definition, fn ToolFunc, deps Deps) *ToolBuilder {
	log := deps.Log
	if log == nil {
		log = logger.Get()
	}
	if def.Parameters == nil {
		def.Parameters = ObjectSchema(nil)
	}
	return &ToolBuilder{
		def: def,
		fn:  fn,
		log: log.With("tool", def.Name),
		errorText: func(Args) string {
			return "Error running " + def.Name
		},
		// Default configs
		retryConfig:   RetryMiddleware{Attempts: 2, Backoff: 200 * time.Millisecond},
		timeoutConfig: TimeoutMiddleware{Timeout: 10 * time.Second},
	}
}

// WithRetry enables retry middleware. It only takes effect for read-only tools.
func (b *ToolBuilder) WithRetry(attempts int, backoff time.Duration) *ToolBuilder {
	b.withRetry = true
	b.retryConfig = RetryMiddleware{
		Attempts: attempts,
		Backoff:  backoff,
	}
	return b
}

// WithTimeout enables timeout middleware
func (b *ToolBuilder) WithTimeout(timeout time.Duration) *ToolBuilder {
	b.withTimeout = true
	b.timeoutConfig = TimeoutMiddleware{
		Timeout: timeout,
	}
	return b
}

// WithStats enables Prometheus call/duration tracking
func (b *ToolBuilder) WithStats() *ToolBuilder {
	b.withStats = true
	return b
}

// OnError sets the failure prefix shown to the model
func (b *ToolBuilder) OnError(fn ErrorTextFunc) *ToolBuilder {
	b.errorText = fn
	return b
}

// NotFound renders ErrNotFound as {"error": message} instead of a failure
func (b *ToolBuilder) NotFound(message string) *ToolBuilder {
	b.notFound = message
	return b
}

// Build creates the tool with configured middleware applied
func (b *ToolBuilder) Build() Tool {
	fn := b.fn

	// Retry is innermost so the timeout bounds all attempts together
	if b.withRetry && b.def.ReadOnly {
		fn = b.retryConfig.Wrap(fn)
	}
	if b.withTimeout {
		fn = b.timeoutConfig.Wrap(fn)
	}
	if b.withStats {
		fn = StatsMiddleware{Log: b.log}.Wrap(b.def.Name, fn)
	}

	return &builtTool{
		def:       b.def,
		fn:        fn,
		errorText: b.errorText,
		notFound:  b.notFound,
	}
}

type builtTool struct {
	def       Definition
	fn        ToolFunc
	errorText ErrorTextFunc
	notFound  string
}

func (t *builtTool) Definition() Definition { return t.def }

func (t *builtTool) Execute(ctx context.Context, args Args) (string, error) {
	if args == nil {
		args = Args{}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if t.notFound != "" && errors.Is(err, errors.ErrNotFound) {
			return Render(ErrorObject(t.notFound))
		}
		return fmt.Sprintf("%s: %v", t.errorText(args), err), err
	}

	text, err := Render(result)
	if err != nil {
		return fmt.Sprintf("%s: %v", t.errorText(args), err), err
	}
	return text, nil
}
