package agents_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/adapters/ai"
	"studiodesk/internal/agents"
	"studiodesk/internal/domain/ai_usage"
	"studiodesk/internal/events"
	"studiodesk/internal/testsupport/aifake"
	"studiodesk/internal/testsupport/studiotest"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

type fixture struct {
	env       *studiotest.Env
	provider  *aifake.Provider
	publisher *events.RecordingPublisher
	executor  *agents.Executor
}

func newFixture(t *testing.T, steps ...aifake.Step) *fixture {
	t.Helper()

	env := studiotest.Seeded(t)
	catalog := env.Catalog(t)
	registry, err := agents.NewDefaultRegistry(catalog)
	require.NoError(t, err)

	provider := aifake.New(steps...)
	publisher := &events.RecordingPublisher{}
	executor := agents.NewExecutor(provider, catalog, registry, nil, publisher, agents.ExecutorConfig{
		Model:         "test-model",
		Temperature:   0.7,
		MaxIterations: 3,
		Now:           func() time.Time { return studiotest.Now },
	}, logger.Nop())

	return &fixture{env: env, provider: provider, publisher: publisher, executor: executor}
}

func TestExecutor_DirectAnswer(t *testing.T) {
	f := newFixture(t, aifake.Text("Hello! How can I help?"))

	res, err := f.executor.Run(context.Background(), agents.AgentSupport, "hi")
	require.NoError(t, err)

	assert.Equal(t, "Hello! How can I help?", res.Response)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 0, res.ToolCalls)
	assert.False(t, res.Exhausted)
	assert.Equal(t, "fake-model", res.Model)

	req := f.provider.Requests()[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, ai.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Fitness Studio Support Specialist")
	assert.Contains(t, req.Messages[0].Content, "Saturday, 15 March 2025")
	assert.Equal(t, "hi", req.Messages[1].Content)
	assert.Equal(t, "test-model", req.Model)
	assert.Len(t, req.Tools, 10)
}

func TestExecutor_ToolRoundTrip(t *testing.T) {
	f := newFixture(t,
		aifake.Call("calculate_pending_dues", map[string]interface{}{"client_id": "CLIENT_A"}),
		aifake.Text("CLIENT_A owes $1,500.50."),
	)

	res, err := f.executor.Run(context.Background(), agents.AgentSupport, "What does CLIENT_A owe?")
	require.NoError(t, err)

	assert.Equal(t, "CLIENT_A owes $1,500.50.", res.Response)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 1, res.ToolCalls)
	assert.Equal(t, 23+15, res.Usage.TotalTokens)

	second := f.provider.Requests()[1]
	last := second.Messages[len(second.Messages)-1]
	assert.Equal(t, ai.RoleTool, last.Role)
	assert.Equal(t, "calculate_pending_dues", last.Name)
	assert.Contains(t, last.Content, "1500.5")
}

func TestExecutor_ToolErrorsAreFedBack(t *testing.T) {
	f := newFixture(t,
		aifake.Call("get_order_by_id", map[string]interface{}{"order_id": "ORDER_404"}),
		aifake.Call("get_total_revenue", nil),
		aifake.Text("Sorry, I could not find that order."),
	)

	res, err := f.executor.Run(context.Background(), agents.AgentSupport, "Where is ORDER_404?")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Iterations)

	reqs := f.provider.Requests()
	notFound := reqs[1].Messages[len(reqs[1].Messages)-1]
	assert.JSONEq(t, `{"error":"Order not found"}`, notFound.Content)

	// dashboard tool through the support agent
	refused := reqs[2].Messages[len(reqs[2].Messages)-1]
	assert.Contains(t, refused.Content, "not available to the support agent")
}

func TestExecutor_ExhaustedIterationsForceFinalAnswer(t *testing.T) {
	f := newFixture(t,
		aifake.Call("get_total_revenue", nil),
		aifake.Call("get_outstanding_payments", nil),
		aifake.Call("get_top_services", nil),
		aifake.Text("Revenue is $2,500.00 with $1,500.50 outstanding."),
	)

	res, err := f.executor.Run(context.Background(), agents.AgentDashboard, "How is the business doing?")
	require.NoError(t, err)

	assert.True(t, res.Exhausted)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, 3, res.ToolCalls)
	assert.Equal(t, "Revenue is $2,500.00 with $1,500.50 outstanding.", res.Response)

	reqs := f.provider.Requests()
	require.Len(t, reqs, 4)
	assert.Len(t, reqs[2].Tools, 8)
	assert.Empty(t, reqs[3].Tools)
	final := reqs[3].Messages[len(reqs[3].Messages)-1]
	assert.Equal(t, ai.RoleUser, final.Role)
	assert.Contains(t, final.Content, "used all available tool calls")
}

func TestExecutor_PublishesUsage(t *testing.T) {
	f := newFixture(t,
		aifake.Call("count_active_inactive_clients", nil),
		aifake.Text("2 active, 1 inactive."),
	)

	ctx := agents.WithSession(context.Background(), "session-42")
	_, err := f.executor.Run(ctx, agents.AgentDashboard, "client counts")
	require.NoError(t, err)

	published := f.publisher.OfType(events.TypeAIUsage)
	require.Len(t, published, 1)
	assert.Equal(t, "session-42", published[0].Key)

	var usage ai_usage.UsageLog
	require.NoError(t, published[0].Decode(&usage))
	assert.Equal(t, "dashboard", usage.Agent)
	assert.Equal(t, "fake", usage.Provider)
	assert.Equal(t, "session-42", usage.SessionID)
	assert.Equal(t, uint32(38), usage.TotalTokens)
	assert.Equal(t, uint16(2), usage.Iterations)
	assert.Equal(t, uint16(1), usage.ToolCallsCount)
	assert.True(t, usage.Success)
	assert.NotEmpty(t, usage.EventID)
}

func TestExecutor_ProviderFailure(t *testing.T) {
	f := newFixture(t, aifake.Fail(errors.ErrRateLimitExceeded))

	_, err := f.executor.Run(context.Background(), agents.AgentSupport, "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRateLimitExceeded)

	published := f.publisher.OfType(events.TypeAIUsage)
	require.Len(t, published, 1)
	var usage ai_usage.UsageLog
	require.NoError(t, published[0].Decode(&usage))
	assert.False(t, usage.Success)
}

func TestExecutor_EmptyAnswerIsAnError(t *testing.T) {
	f := newFixture(t, aifake.Text("   "))

	_, err := f.executor.Run(context.Background(), agents.AgentDashboard, "anything")
	assert.ErrorIs(t, err, errors.ErrProviderFailure)
}

func TestExecutor_UnknownAgent(t *testing.T) {
	f := newFixture(t, aifake.Text("unused"))

	_, err := f.executor.Run(context.Background(), agents.AgentType("sales"), "hi")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Zero(t, f.provider.Calls())
}

func TestDefaultRegistry(t *testing.T) {
	env := studiotest.New(t)
	registry, err := agents.NewDefaultRegistry(env.Catalog(t))
	require.NoError(t, err)

	assert.Equal(t, []agents.AgentType{agents.AgentDashboard, agents.AgentSupport}, registry.List())

	support, ok := registry.Get(agents.AgentSupport)
	require.True(t, ok)
	assert.Len(t, support.Tools, 10)
	assert.Contains(t, support.Tools, "create_order")
}
