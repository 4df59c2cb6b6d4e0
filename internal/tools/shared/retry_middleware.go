package shared

import (
	"context"
	"time"

	"studiodesk/pkg/errors"
)

// RetryMiddleware retries tool execution on transient errors with optional backoff
type RetryMiddleware struct {
	Attempts int
	Backoff  time.Duration
}

// Wrap adds retry semantics to a tool function. The final error from the last attempt is returned.
func (m RetryMiddleware) Wrap(fn ToolFunc) ToolFunc {
	attempts := m.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := m.Backoff

	return func(ctx context.Context, args Args) (interface{}, error) {
		var result interface{}
		var err error

		for i := 0; i < attempts; i++ {
			result, err = fn(ctx, args)
			if err == nil || !retryable(err) {
				return result, err
			}

			if backoff > 0 && i < attempts-1 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
			}
		}

		return result, err
	}
}

// retryable reports whether another attempt could succeed
func retryable(err error) bool {
	switch {
	case errors.Is(err, errors.ErrNotFound),
		errors.Is(err, errors.ErrInvalidInput),
		errors.Is(err, errors.ErrAlreadyExists),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// TimeoutMiddleware enforces per-call deadlines for tool execution
type TimeoutMiddleware struct {
	Timeout time.Duration
}

// Wrap sets a timeout on tool execution if configured
func (m TimeoutMiddleware) Wrap(fn ToolFunc) ToolFunc {
	if m.Timeout <= 0 {
		return fn
	}

	return func(ctx context.Context, args Args) (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, m.Timeout)
		defer cancel()

		result, err := fn(ctx, args)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.Wrapf(errors.ErrTimeout, "tool exceeded %v", m.Timeout)
		}
		return result, err
	}
}
