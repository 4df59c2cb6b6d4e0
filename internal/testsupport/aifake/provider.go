// Package aifake provides a scripted ai.ChatProvider for tests.
package aifake

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"studiodesk/internal/adapters/ai"
	"studiodesk/pkg/errors"
)

// Step produces one scripted response. It sees the request so tests can assert on it.
type Step func(req ai.ChatRequest) (*ai.ChatResponse, error)

// Provider replays Steps in order and records every request it receives.
// Once the script is exhausted the last step repeats.
type Provider struct {
	mu       sync.Mutex
	name     string
	steps    []Step
	requests []ai.ChatRequest
}

// New creates a provider named "fake" that plays steps in order.
func New(steps ...Step) *Provider {
	return &Provider{name: "fake", steps: steps}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	idx := len(p.requests)
	p.requests = append(p.requests, cloneRequest(req))
	p.mu.Unlock()

	if len(p.steps) == 0 {
		return nil, errors.Wrap(errors.ErrProviderFailure, "aifake: no steps scripted")
	}
	if idx >= len(p.steps) {
		idx = len(p.steps) - 1
	}
	return p.steps[idx](req)
}

// Requests returns a copy of the received requests.
func (p *Provider) Requests() []ai.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ai.ChatRequest(nil), p.requests...)
}

// Calls returns the number of Chat calls so far.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func cloneRequest(req ai.ChatRequest) ai.ChatRequest {
	req.Messages = append([]ai.Message(nil), req.Messages...)
	req.Tools = append([]ai.ToolDefinition(nil), req.Tools...)
	return req
}

// Text answers with a final text message.
func Text(content string) Step {
	return func(ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{
			Model:        "fake-model",
			Message:      ai.Message{Role: ai.RoleAssistant, Content: content},
			FinishReason: ai.FinishReasonStop,
			Usage:        ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}, nil
	}
}

// Echo answers with the content of the last user message, optionally transformed.
func Echo(transform func(string) string) Step {
	return func(req ai.ChatRequest) (*ai.ChatResponse, error) {
		var last string
		for _, m := range req.Messages {
			if m.Role == ai.RoleUser {
				last = m.Content
			}
		}
		if transform != nil {
			last = transform(last)
		}
		return Text(last)(req)
	}
}

// Call asks for one tool invocation with args encoded as JSON.
func Call(tool string, args map[string]interface{}) Step {
	return Calls(map[string]map[string]interface{}{tool: args})
}

// Calls asks for several tool invocations in one turn.
func Calls(calls map[string]map[string]interface{}) Step {
	return func(ai.ChatRequest) (*ai.ChatResponse, error) {
		msg := ai.Message{Role: ai.RoleAssistant}
		i := 0
		for tool, args := range calls {
			raw, err := json.Marshal(args)
			if err != nil {
				return nil, err
			}
			msg.ToolCalls = append(msg.ToolCalls, ai.ToolCall{
				ID:       fmt.Sprintf("call_%s_%d", tool, i),
				Function: ai.FunctionCall{Name: tool, Arguments: string(raw)},
			})
			i++
		}
		return &ai.ChatResponse{
			Model:        "fake-model",
			Message:      msg,
			FinishReason: ai.FinishReasonToolCalls,
			Usage:        ai.Usage{PromptTokens: 20, CompletionTokens: 3, TotalTokens: 23},
		}, nil
	}
}

// RawCall asks for a tool invocation with verbatim argument text.
func RawCall(tool, arguments string) Step {
	return func(ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{
			Model: "fake-model",
			Message: ai.Message{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{
				ID:       "call_raw",
				Function: ai.FunctionCall{Name: tool, Arguments: arguments},
			}}},
			FinishReason: ai.FinishReasonToolCalls,
		}, nil
	}
}

// Fail returns err.
func Fail(err error) Step {
	return func(ai.ChatRequest) (*ai.ChatResponse, error) {
		return nil, err
	}
}
