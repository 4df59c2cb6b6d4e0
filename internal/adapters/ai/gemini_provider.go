package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"studiodesk/pkg/errors"
)

// Ensure GeminiProvider implements ChatProvider
var _ ChatProvider = (*GeminiProvider)(nil)

// GeminiProvider talks to the Gemini API through the official genai SDK.
type GeminiProvider struct {
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrMissingCredentials, "GOOGLE_API_KEY is required for gemini")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	return &GeminiProvider{client: client, timeout: timeout}, nil
}

// Name returns provider name.
func (p *GeminiProvider) Name() string { return ProviderNameGemini.String() }

// Chat sends one GenerateContent request.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	system, contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens:   int32(maxTokens),
		Tools:             toGeminiTools(req.Tools),
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrProviderFailure, "gemini: %v", err)
	}

	return fromGeminiResponse(req.Model, resp)
}

// toGeminiContents splits out the system instruction and converts the rest of the conversation.
// Consecutive tool results become one user-role content with a function response per call,
// so parallel calls are answered in a single turn.
func toGeminiContents(messages []Message) (*genai.Content, []*genai.Content, error) {
	var systemParts []string
	contents := make([]*genai.Content, 0, len(messages))

	var responses *genai.Content
	for _, msg := range messages {
		if msg.Role != RoleTool {
			responses = nil
		}

		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, msg.Content)

		case RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))

		case RoleAssistant:
			if raw, ok := msg.raw.(*genai.Content); ok && raw != nil {
				contents = append(contents, raw)
				continue
			}
			content := &genai.Content{Role: genai.RoleModel}
			if msg.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				args := map[string]any{}
				if tc.Function.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
						return nil, nil, errors.Wrapf(errors.ErrInvalidInput, "tool call %s arguments: %v", tc.Function.Name, err)
					}
				}
				content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Function.Name,
					Args: args,
				}})
			}
			contents = append(contents, content)

		case RoleTool:
			if responses == nil {
				responses = &genai.Content{Role: genai.RoleUser}
				contents = append(contents, responses)
			}
			responses.Parts = append(responses.Parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       msg.ToolCallID,
				Name:     msg.Name,
				Response: map[string]any{"output": msg.Content},
			}})

		default:
			return nil, nil, errors.Wrapf(errors.ErrInvalidInput, "unknown message role %q", msg.Role)
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}
	return system, contents, nil
}

func toGeminiTools(tools []ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: t.Parameters,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func fromGeminiResponse(model string, resp *genai.GenerateContentResponse) (*ChatResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		reason := "no candidates"
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, errors.Wrapf(errors.ErrProviderFailure, "gemini returned %s", reason)
	}

	candidate := resp.Candidates[0]
	msg := Message{Role: RoleAssistant, raw: candidate.Content}

	var text strings.Builder
	for i, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, errors.Wrapf(err, "encode %s arguments", part.FunctionCall.Name)
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("call_%d", i)
			}
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:       id,
				Function: FunctionCall{Name: part.FunctionCall.Name, Arguments: string(args)},
			})
		}
	}
	msg.Content = text.String()

	out := &ChatResponse{
		ID:           resp.ResponseID,
		Model:        model,
		Message:      msg,
		FinishReason: geminiFinishReason(candidate.FinishReason, len(msg.ToolCalls) > 0),
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

func geminiFinishReason(reason genai.FinishReason, hasToolCalls bool) FinishReason {
	if hasToolCalls {
		return FinishReasonToolCalls
	}
	switch reason {
	case genai.FinishReasonStop, "":
		return FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return FinishReasonLength
	default:
		return FinishReasonOther
	}
}
