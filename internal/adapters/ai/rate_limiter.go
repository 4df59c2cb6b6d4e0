package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"studiodesk/internal/metrics"
	"studiodesk/pkg/errors"
)

// RateLimiter defines the interface for rate limiting AI provider requests.
type RateLimiter interface {
	// Wait blocks until request can proceed or context is cancelled.
	Wait(ctx context.Context) error

	// Allow checks if request can proceed without blocking.
	Allow() bool

	// Limit returns current rate limit (requests per minute).
	Limit() float64
}

// TokenBucketLimiter rate limits outgoing LLM requests within one process.
type TokenBucketLimiter struct {
	limiter      *rate.Limiter
	reqPerMinute float64
	provider     ProviderName
}

// NewTokenBucketLimiter creates a new token bucket rate limiter.
// reqPerMinute: maximum requests per minute; burst <= 0 defaults to 10% of the rate (min 1).
func NewTokenBucketLimiter(provider ProviderName, reqPerMinute float64, burst int) *TokenBucketLimiter {
	if burst <= 0 {
		burst = int(reqPerMinute / 10)
		if burst < 1 {
			burst = 1
		}
	}

	return &TokenBucketLimiter{
		limiter:      rate.NewLimiter(rate.Limit(reqPerMinute/60.0), burst),
		reqPerMinute: reqPerMinute,
		provider:     provider,
	}
}

// Wait blocks until a token is available or context is cancelled.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	if l.limiter.Allow() {
		return nil
	}

	metrics.RateLimited.WithLabelValues("llm_" + l.provider.String()).Inc()

	if err := l.limiter.Wait(ctx); err != nil {
		return &RateLimitError{Provider: l.provider, Err: err}
	}
	return nil
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (l *TokenBucketLimiter) Allow() bool {
	return l.limiter.Allow()
}

// Limit returns the configured requests per minute.
func (l *TokenBucketLimiter) Limit() float64 {
	return l.reqPerMinute
}

// NoOpLimiter never blocks.
type NoOpLimiter struct{}

func NewNoOpLimiter() *NoOpLimiter { return &NoOpLimiter{} }

func (NoOpLimiter) Wait(context.Context) error { return nil }
func (NoOpLimiter) Allow() bool                { return true }
func (NoOpLimiter) Limit() float64             { return 0 }

// NewRateLimiter returns a token bucket limiter, or a no-op limiter when reqPerMinute is not positive.
func NewRateLimiter(provider ProviderName, reqPerMinute float64, burst int) RateLimiter {
	if reqPerMinute <= 0 {
		return NewNoOpLimiter()
	}
	return NewTokenBucketLimiter(provider, reqPerMinute, burst)
}

// RateLimitError wraps rate limit related errors with provider context.
type RateLimitError struct {
	Provider ProviderName
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit wait for %s: %v", e.Provider, e.Err)
}

// Unwrap exposes ErrRateLimitExceeded as well as the underlying cause.
func (e *RateLimitError) Unwrap() []error {
	return []error{errors.ErrRateLimitExceeded, e.Err}
}

// RateLimitedProvider waits on a limiter before every call to the wrapped provider.
type RateLimitedProvider struct {
	ChatProvider
	limiter RateLimiter
}

// WithRateLimit decorates provider with limiter. A nil limiter returns provider unchanged.
func WithRateLimit(provider ChatProvider, limiter RateLimiter) ChatProvider {
	if limiter == nil {
		return provider
	}
	return &RateLimitedProvider{ChatProvider: provider, limiter: limiter}
}

// Chat waits for a token and forwards the request.
func (p *RateLimitedProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.ChatProvider.Chat(ctx, req)
}
