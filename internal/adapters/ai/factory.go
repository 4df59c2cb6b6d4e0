package ai

import (
	"context"

	"studiodesk/internal/adapters/config"
	"studiodesk/pkg/errors"
)

// NewChatProvider builds the provider selected by cfg.Provider, wrapped in a rate limiter
// when cfg.MaxRPM is positive.
func NewChatProvider(ctx context.Context, cfg config.AIConfig) (ChatProvider, error) {
	name := NormalizeProviderName(cfg.Provider)

	var (
		provider ChatProvider
		err      error
	)
	switch name {
	case ProviderNameGemini:
		provider, err = NewGeminiProvider(ctx, cfg.GoogleKey, cfg.Timeout)
	case ProviderNameOpenAI:
		provider, err = NewOpenAIProvider(cfg.OpenAIKey, cfg.Timeout)
	default:
		return nil, errors.NewValidationError("AI_PROVIDER", "must be gemini or openai", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MaxRPM <= 0 {
		return provider, nil
	}
	return WithRateLimit(provider, NewTokenBucketLimiter(name, float64(cfg.MaxRPM), 0)), nil
}

// DefaultModel returns the fallback model for a provider when none is configured.
func DefaultModel(name ProviderName) string {
	if name == ProviderNameOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

// ModelFor picks the configured model or the provider's default.
func ModelFor(cfg config.AIConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return DefaultModel(NormalizeProviderName(cfg.Provider))
}
