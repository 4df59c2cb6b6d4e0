package translate

import (
	"context"
	"strings"

	"studiodesk/internal/adapters/ai"
	"studiodesk/internal/metrics"
	"studiodesk/pkg/logger"
	"studiodesk/pkg/templates"
)

const promptTemplate = templates.PromptTranslate

// Translator turns a user query into English before it reaches an agent.
type Translator interface {
	// Translate never fails: on any problem it returns text unchanged.
	Translate(ctx context.Context, text string) string
}

// LLMTranslator asks a chat provider for a literal English translation.
type LLMTranslator struct {
	provider  ai.ChatProvider
	model     string
	templates *templates.Registry
	log       *logger.Logger
}

// NewLLMTranslator creates a translator backed by provider and model.
func NewLLMTranslator(provider ai.ChatProvider, model string, tmpl *templates.Registry, log *logger.Logger) *LLMTranslator {
	if tmpl == nil {
		tmpl = templates.Get()
	}
	return &LLMTranslator{
		provider:  provider,
		model:     model,
		templates: tmpl,
		log:       log.With("component", "translator"),
	}
}

// Translate returns the English rendering of text, or text itself when translation fails.
func (t *LLMTranslator) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	prompt, err := t.templates.Render(promptTemplate, map[string]any{"Text": text})
	if err != nil {
		return t.fallback(text, err)
	}

	resp, err := t.provider.Chat(ctx, ai.ChatRequest{
		Model:       t.model,
		Messages:    []ai.Message{ai.UserMessage(prompt)},
		Temperature: 0,
	})
	if err != nil {
		return t.fallback(text, err)
	}

	metrics.RecordTokens(t.provider.Name(), resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	translated := strings.TrimSpace(resp.Message.Content)
	if translated == "" {
		return t.fallback(text, nil)
	}

	t.log.Debugw("Translated query", "original_len", len(text), "translated_len", len(translated))
	return translated
}

func (t *LLMTranslator) fallback(text string, err error) string {
	metrics.TranslationFallbacks.Inc()
	if err != nil {
		t.log.Warnw("Translation failed, using original text", "error", err)
	} else {
		t.log.Warn("Translation returned empty output, using original text")
	}
	return text
}

// Passthrough returns text unchanged. Used when translation is turned off.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text string) string { return text }
