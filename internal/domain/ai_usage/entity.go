package ai_usage

import "time"

// UsageLog is one agent run's language model consumption
type UsageLog struct {
	Timestamp time.Time `ch:"timestamp" json:"timestamp"`
	EventID   string    `ch:"event_id" json:"event_id"`
	SessionID string    `ch:"session_id" json:"session_id"`

	Agent    string `ch:"agent" json:"agent"`
	Provider string `ch:"provider" json:"provider"`
	Model    string `ch:"model" json:"model"`

	PromptTokens     uint32 `ch:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens uint32 `ch:"completion_tokens" json:"completion_tokens"`
	TotalTokens      uint32 `ch:"total_tokens" json:"total_tokens"`

	Iterations     uint16 `ch:"iterations" json:"iterations"`
	ToolCallsCount uint16 `ch:"tool_calls_count" json:"tool_calls_count"`
	LatencyMs      uint32 `ch:"latency_ms" json:"latency_ms"`
	Success        bool   `ch:"success" json:"success"`
}
