package ai

import (
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"studiodesk/pkg/errors"
)

func sampleConversation() []Message {
	call := ToolCall{ID: "call_1", Function: FunctionCall{Name: "get_client_orders", Arguments: `{"client_id":"C1"}`}}
	return []Message{
		SystemMessage("you are a support agent"),
		UserMessage("orders for C1?"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{call}},
		ToolResult(call, `[{"order_id":"ORD-1"}]`),
	}
}

func TestToGeminiContents(t *testing.T) {
	system, contents, err := toGeminiContents(sampleConversation())
	require.NoError(t, err)

	require.NotNil(t, system)
	assert.Equal(t, "you are a support agent", system.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, "orders for C1?", contents[0].Parts[0].Text)

	assert.Equal(t, genai.RoleModel, contents[1].Role)
	fc := contents[1].Parts[0].FunctionCall
	require.NotNil(t, fc)
	assert.Equal(t, "get_client_orders", fc.Name)
	assert.Equal(t, "C1", fc.Args["client_id"])

	fr := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, "call_1", fr.ID)
	assert.Equal(t, "get_client_orders", fr.Name)
	assert.Equal(t, `[{"order_id":"ORD-1"}]`, fr.Response["output"])
}

func TestToGeminiContentsGroupsParallelResults(t *testing.T) {
	revenue := ToolCall{ID: "call_1", Function: FunctionCall{Name: "get_total_revenue", Arguments: `{}`}}
	outstanding := ToolCall{ID: "call_2", Function: FunctionCall{Name: "get_outstanding_payments", Arguments: `{}`}}
	dues := ToolCall{ID: "call_3", Function: FunctionCall{Name: "calculate_pending_dues", Arguments: `{"client_id":"C1"}`}}

	_, contents, err := toGeminiContents([]Message{
		UserMessage("revenue and outstanding?"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{revenue, outstanding}},
		ToolResult(revenue, "120000"),
		ToolResult(outstanding, "4500"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{dues}},
		ToolResult(dues, "0"),
	})
	require.NoError(t, err)
	require.Len(t, contents, 5)

	require.Len(t, contents[1].Parts, 2)
	first := contents[2]
	assert.Equal(t, genai.RoleUser, first.Role)
	require.Len(t, first.Parts, len(contents[1].Parts))
	assert.Equal(t, "call_1", first.Parts[0].FunctionResponse.ID)
	assert.Equal(t, "call_2", first.Parts[1].FunctionResponse.ID)
	assert.Equal(t, "4500", first.Parts[1].FunctionResponse.Response["output"])

	require.Len(t, contents[4].Parts, 1)
	assert.Equal(t, "calculate_pending_dues", contents[4].Parts[0].FunctionResponse.Name)
}

func TestToGeminiContentsRejectsBadArguments(t *testing.T) {
	_, _, err := toGeminiContents([]Message{{
		Role:      RoleAssistant,
		ToolCalls: []ToolCall{{ID: "x", Function: FunctionCall{Name: "f", Arguments: "{"}}},
	}})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestToGeminiContentsReplaysRaw(t *testing.T) {
	raw := &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: "original", ThoughtSignature: []byte("sig")}}}
	_, contents, err := toGeminiContents([]Message{{Role: RoleAssistant, Content: "ignored", raw: raw}})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Same(t, raw, contents[0])
}

func TestFromGeminiResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		ResponseID: "r1",
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: "Let me check. "},
				{FunctionCall: &genai.FunctionCall{Name: "list_upcoming_classes", Args: map[string]any{}}},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount: 10, CandidatesTokenCount: 4, TotalTokenCount: 14,
		},
	}

	out, err := fromGeminiResponse("gemini-1.5-flash", resp)
	require.NoError(t, err)

	assert.Equal(t, "r1", out.ID)
	assert.Equal(t, "gemini-1.5-flash", out.Model)
	assert.Equal(t, "Let me check. ", out.Message.Content)
	assert.Equal(t, FinishReasonToolCalls, out.FinishReason)
	require.Len(t, out.Message.ToolCalls, 1)
	assert.Equal(t, "call_2", out.Message.ToolCalls[0].ID)
	assert.Equal(t, "{}", out.Message.ToolCalls[0].Function.Arguments)
	assert.Equal(t, Usage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14}, out.Usage)
	assert.Same(t, resp.Candidates[0].Content, out.Message.raw)
}

func TestFromGeminiResponseEmpty(t *testing.T) {
	_, err := fromGeminiResponse("m", &genai.GenerateContentResponse{})
	assert.True(t, errors.Is(err, errors.ErrProviderFailure))
}

func TestGeminiFinishReason(t *testing.T) {
	assert.Equal(t, FinishReasonStop, geminiFinishReason(genai.FinishReasonStop, false))
	assert.Equal(t, FinishReasonLength, geminiFinishReason(genai.FinishReasonMaxTokens, false))
	assert.Equal(t, FinishReasonOther, geminiFinishReason(genai.FinishReasonSafety, false))
	assert.Equal(t, FinishReasonToolCalls, geminiFinishReason(genai.FinishReasonStop, true))
}

func TestToGeminiTools(t *testing.T) {
	assert.Nil(t, toGeminiTools(nil))

	params := map[string]interface{}{"type": "object"}
	tools := toGeminiTools([]ToolDefinition{{Name: "a", Description: "d", Parameters: params}})
	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 1)
	assert.Equal(t, "a", tools[0].FunctionDeclarations[0].Name)
	assert.Equal(t, params, tools[0].FunctionDeclarations[0].ParametersJsonSchema)
}

func TestToOpenAIMessages(t *testing.T) {
	msgs, err := toOpenAIMessages(sampleConversation())
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[2].OfAssistant.ToolCalls[0].OfFunction.ID)
	assert.Equal(t, "get_client_orders", msgs[2].OfAssistant.ToolCalls[0].OfFunction.Function.Name)
	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "call_1", msgs[3].OfTool.ToolCallID)
}

func TestToOpenAIMessagesReplaysRaw(t *testing.T) {
	raw := openai.AssistantMessage("from the wire")
	msgs, err := toOpenAIMessages([]Message{{Role: RoleAssistant, Content: "other", raw: raw}})
	require.NoError(t, err)
	assert.Equal(t, raw, msgs[0])
}

func TestToOpenAIMessagesUnknownRole(t *testing.T) {
	_, err := toOpenAIMessages([]Message{{Role: "narrator"}})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestOpenAIFinishReason(t *testing.T) {
	assert.Equal(t, FinishReasonStop, openAIFinishReason("stop", false))
	assert.Equal(t, FinishReasonLength, openAIFinishReason("length", false))
	assert.Equal(t, FinishReasonToolCalls, openAIFinishReason("tool_calls", false))
	assert.Equal(t, FinishReasonOther, openAIFinishReason("content_filter", false))
}
