package agents

import (
	"unicode/utf8"

	"studiodesk/internal/adapters/ai"
)

const (
	defaultConversationTokens = 50000
	// compressedToolResultRunes is what survives of an old tool result after compression
	compressedToolResultRunes = 400
	truncatedMarker           = "...[truncated]"
)

// Conversation is the message history of one agent run with a rough token count.
// Tool results of earlier rounds are shortened once the count exceeds the budget.
type Conversation struct {
	systemPrompt  string
	history       []ai.Message
	tokens        []int
	maxTokens     int
	currentTokens int
	toolCalls     int
}

// NewConversation starts a conversation with the given system prompt
func NewConversation(systemPrompt string, maxTokens int) *Conversation {
	if maxTokens <= 0 {
		maxTokens = defaultConversationTokens
	}
	return &Conversation{
		systemPrompt:  systemPrompt,
		history:       make([]ai.Message, 0, 16),
		maxTokens:     maxTokens,
		currentTokens: estimateTokens(systemPrompt),
	}
}

func (c *Conversation) append(msg ai.Message) {
	n := estimateMessageTokens(msg)
	c.history = append(c.history, msg)
	c.tokens = append(c.tokens, n)
	c.currentTokens += n
}

// AddUserMessage adds a user message to the conversation
func (c *Conversation) AddUserMessage(content string) {
	c.append(ai.UserMessage(content))
}

// AddAssistantMessage records the model's turn, including any tool calls it requested
func (c *Conversation) AddAssistantMessage(msg ai.Message) {
	c.toolCalls += len(msg.ToolCalls)
	c.append(msg)
}

// AddToolResult adds a tool execution result and compresses when over budget
func (c *Conversation) AddToolResult(call ai.ToolCall, content string) {
	c.append(ai.ToolResult(call, content))
	if c.currentTokens > c.maxTokens {
		c.Compress()
	}
}

// Messages returns the system prompt followed by the history
func (c *Conversation) Messages() []ai.Message {
	out := make([]ai.Message, 0, len(c.history)+1)
	if c.systemPrompt != "" {
		out = append(out, ai.SystemMessage(c.systemPrompt))
	}
	return append(out, c.history...)
}

// TokenCount returns the current estimated token count
func (c *Conversation) TokenCount() int {
	return c.currentTokens
}

// ToolCallCount returns how many tool calls the model requested so far
func (c *Conversation) ToolCallCount() int {
	return c.toolCalls
}

// Compress shortens tool results older than the last assistant turn.
// Calls and results stay paired because providers reject orphaned results.
func (c *Conversation) Compress() {
	last := -1
	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].Role == ai.RoleAssistant {
			last = i
			break
		}
	}

	for i := 0; i < last; i++ {
		msg := &c.history[i]
		if msg.Role != ai.RoleTool || utf8.RuneCountInString(msg.Content) <= compressedToolResultRunes {
			continue
		}
		runes := []rune(msg.Content)
		msg.Content = string(runes[:compressedToolResultRunes]) + truncatedMarker

		n := estimateMessageTokens(*msg)
		c.currentTokens += n - c.tokens[i]
		c.tokens[i] = n
	}
}

// estimateTokens is a rough count: about 4 characters per token for English text
func estimateTokens(text string) int {
	return len(text) / 4
}

func estimateMessageTokens(msg ai.Message) int {
	total := estimateTokens(msg.Content)
	for _, tc := range msg.ToolCalls {
		total += estimateTokens(tc.Function.Name) + estimateTokens(tc.Function.Arguments)
	}
	return total
}
