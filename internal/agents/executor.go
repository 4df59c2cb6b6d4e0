package agents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"studiodesk/internal/adapters/ai"
	"studiodesk/internal/domain/ai_usage"
	"studiodesk/internal/events"
	"studiodesk/internal/metrics"
	"studiodesk/internal/tools"
	"studiodesk/internal/tools/shared"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
	"studiodesk/pkg/templates"
)

const (
	defaultMaxIterations = 3
	finalAnswerTemplate  = templates.PromptFinalAnswer
)

// ExecutorConfig holds model settings shared by every agent
type ExecutorConfig struct {
	Model         string
	Temperature   float64
	MaxIterations int
	// Now defaults to time.Now; the system prompt states today's date
	Now func() time.Time
}

// Executor runs agents as a tool-calling loop over any ai.ChatProvider.
type Executor struct {
	provider  ai.ChatProvider
	tools     *tools.Registry
	agents    *Registry
	templates *templates.Registry
	publisher events.Publisher
	cfg       ExecutorConfig
	log       *logger.Logger
}

// NewExecutor wires an executor. A nil tmpl uses the embedded templates and a nil publisher drops usage events.
func NewExecutor(
	provider ai.ChatProvider,
	toolRegistry *tools.Registry,
	agentRegistry *Registry,
	tmpl *templates.Registry,
	publisher events.Publisher,
	cfg ExecutorConfig,
	log *logger.Logger,
) *Executor {
	if tmpl == nil {
		tmpl = templates.Get()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Executor{
		provider:  provider,
		tools:     toolRegistry,
		agents:    agentRegistry,
		templates: tmpl,
		publisher: publisher,
		cfg:       cfg,
		log:       log.With("component", "agent_executor"),
	}
}

// run carries the mutable state of one execution
type run struct {
	agent   AgentConfig
	conv    *Conversation
	allowed map[string]bool
	usage   ai.Usage
	model   string
}

// Run answers prompt with the given agent. Tool errors are fed back to the model;
// only provider and setup failures end the run with an error.
func (e *Executor) Run(ctx context.Context, agentType AgentType, prompt string) (*Result, error) {
	cfg, ok := e.agents.Get(agentType)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown agent %s", agentType)
	}

	start := time.Now()
	if cfg.TotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TotalTimeout)
		defer cancel()
	}

	ctx = shared.WithAgent(ctx, string(agentType))
	sessionID := SessionFromContext(ctx)

	log := e.log.With("agent", agentType, "session_id", sessionID)
	log.Infow("Agent run started", "prompt_length", len(prompt))

	result, err := e.execute(ctx, cfg, prompt, log)
	result.Duration = time.Since(start)

	metrics.RecordAgentRun(string(agentType), result.Iterations, result.Duration, err)
	e.publishUsage(ctx, sessionID, result, err == nil)

	if err != nil {
		log.Errorw("Agent run failed",
			"error", err,
			"iterations", result.Iterations,
			"tool_calls", result.ToolCalls,
		)
		return nil, err
	}

	log.Infow("Agent run finished",
		"iterations", result.Iterations,
		"tool_calls", result.ToolCalls,
		"exhausted", result.Exhausted,
		"total_tokens", result.Usage.TotalTokens,
		"duration", result.Duration,
	)
	return result, nil
}

// execute never returns a nil Result so usage is recorded for failed runs too
func (e *Executor) execute(ctx context.Context, cfg AgentConfig, prompt string, log *logger.Logger) (*Result, error) {
	result := &Result{Agent: cfg.Type}

	systemPrompt, err := e.systemPrompt(cfg)
	if err != nil {
		return result, err
	}

	defs, err := e.tools.Definitions(cfg.Tools...)
	if err != nil {
		return result, errors.Wrapf(err, "agent %s", cfg.Type)
	}
	toolDefs := make([]ai.ToolDefinition, 0, len(defs))
	allowed := make(map[string]bool, len(defs))
	for _, d := range defs {
		toolDefs = append(toolDefs, ai.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
		allowed[d.Name] = true
	}

	r := &run{
		agent:   cfg,
		conv:    NewConversation(systemPrompt, 0),
		allowed: allowed,
	}
	r.conv.AddUserMessage(prompt)

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = e.cfg.MaxIterations
	}

	defer func() {
		result.Usage = r.usage
		result.Model = r.model
		result.ToolCalls = r.conv.ToolCallCount()
	}()

	for result.Iterations < maxIterations {
		result.Iterations++

		resp, err := e.chat(ctx, r, toolDefs)
		if err != nil {
			return result, err
		}
		r.conv.AddAssistantMessage(resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			return result, finalText(result, resp)
		}

		for _, call := range resp.Message.ToolCalls {
			r.conv.AddToolResult(call, e.callTool(ctx, r, call, log))
		}
	}

	// Budget spent while the model still wanted tools: ask for an answer from what it has
	log.Debugw("Iteration budget exhausted, requesting final answer", "iterations", result.Iterations)
	result.Exhausted = true

	instruction, err := e.templates.Render(finalAnswerTemplate, nil)
	if err != nil {
		return result, errors.Wrap(err, "render final answer prompt")
	}
	r.conv.AddUserMessage(instruction)

	resp, err := e.chat(ctx, r, nil)
	if err != nil {
		return result, err
	}
	return result, finalText(result, resp)
}

func (e *Executor) systemPrompt(cfg AgentConfig) (string, error) {
	text, err := e.templates.Render(cfg.SystemPromptTemplate, map[string]interface{}{
		"Role":      cfg.Role,
		"Goal":      cfg.Goal,
		"Backstory": cfg.Backstory,
		"Today":     e.cfg.Now().UTC().Format("Monday, 2 January 2006"),
		"Tools":     cfg.Tools,
	})
	if err != nil {
		return "", errors.Wrapf(err, "render system prompt for %s", cfg.Type)
	}
	return text, nil
}

func (e *Executor) chat(ctx context.Context, r *run, toolDefs []ai.ToolDefinition) (*ai.ChatResponse, error) {
	resp, err := e.provider.Chat(ctx, ai.ChatRequest{
		Model:       e.cfg.Model,
		Messages:    r.conv.Messages(),
		Tools:       toolDefs,
		Temperature: e.cfg.Temperature,
		MaxTokens:   r.agent.MaxTokens,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%s agent: %s chat", r.agent.Type, e.provider.Name())
	}

	model := resp.Model
	if model == "" {
		model = e.cfg.Model
	}
	r.model = model
	r.usage.Add(resp.Usage)
	metrics.RecordTokens(e.provider.Name(), model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return resp, nil
}

// callTool returns the text handed back to the model. Failures become text, not errors.
func (e *Executor) callTool(ctx context.Context, r *run, call ai.ToolCall, log *logger.Logger) string {
	name := call.Function.Name
	if !r.allowed[name] {
		log.Warnw("Model requested a tool outside its set", "tool", name)
		return "Error: tool " + name + " is not available to the " + string(r.agent.Type) + " agent"
	}

	text, err := e.tools.Execute(ctx, name, call.Function.Arguments)
	if err != nil {
		log.Warnw("Tool call failed", "tool", name, "error", err)
	}
	return text
}

func finalText(result *Result, resp *ai.ChatResponse) error {
	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return errors.Wrapf(errors.ErrProviderFailure, "empty answer (finish reason %s)", resp.FinishReason)
	}
	result.Response = text
	return nil
}

func (e *Executor) publishUsage(ctx context.Context, sessionID string, result *Result, success bool) {
	usage := ai_usage.UsageLog{
		Timestamp:        time.Now().UTC(),
		EventID:          uuid.NewString(),
		SessionID:        sessionID,
		Agent:            string(result.Agent),
		Provider:         e.provider.Name(),
		Model:            result.Model,
		PromptTokens:     clampUint32(result.Usage.PromptTokens),
		CompletionTokens: clampUint32(result.Usage.CompletionTokens),
		TotalTokens:      clampUint32(result.Usage.TotalTokens),
		Iterations:       clampUint16(result.Iterations),
		ToolCallsCount:   clampUint16(result.ToolCalls),
		LatencyMs:        clampUint32(int(result.Duration.Milliseconds())),
		Success:          success,
	}
	if usage.Model == "" {
		usage.Model = e.cfg.Model
	}

	events.Emit(context.WithoutCancel(ctx), e.publisher, e.log, events.TypeAIUsage, sessionID, usage)
}

func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	if uint64(v) > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}

func clampUint16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > int(^uint16(0)) {
		return ^uint16(0)
	}
	return uint16(v)
}

var _ Runner = (*Executor)(nil)
