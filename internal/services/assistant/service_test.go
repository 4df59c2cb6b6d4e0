package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/agents"
	"studiodesk/internal/domain/memory"
	"studiodesk/internal/events"
	"studiodesk/internal/testsupport/aifake"
	"studiodesk/internal/testsupport/studiotest"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

type runCall struct {
	agent   agents.AgentType
	prompt  string
	session string
}

type stubRunner struct {
	calls    []runCall
	response string
	err      error
}

func (r *stubRunner) Run(ctx context.Context, agentType agents.AgentType, prompt string) (*agents.Result, error) {
	sessionID := ""
	if id := agents.SessionFromContext(ctx); id != "" {
		sessionID = id
	}
	r.calls = append(r.calls, runCall{agent: agentType, prompt: prompt, session: sessionID})
	if r.err != nil {
		return nil, r.err
	}
	return &agents.Result{Agent: agentType, Response: r.response}, nil
}

type upperTranslator struct{ calls int }

func (u *upperTranslator) Translate(_ context.Context, text string) string {
	u.calls++
	return strings.ToUpper(text)
}

type failingMemory struct{ appended []string }

func (f *failingMemory) Context(context.Context, string) (string, error) {
	return "", errors.ErrUnavailable
}

func (f *failingMemory) Append(_ context.Context, _ string, message string) {
	f.appended = append(f.appended, message)
}

func newService(runner agents.Runner, mem Memory, tr *upperTranslator) (*Service, *events.RecordingPublisher) {
	publisher := &events.RecordingPublisher{}
	return NewService(Deps{
		Runner:     runner,
		Memory:     mem,
		Translator: tr,
		Publisher:  publisher,
	}, logger.Nop()), publisher
}

func TestComposePrompt(t *testing.T) {
	assert.Equal(t, "hello", ComposePrompt("", "hello"))
	assert.Equal(t, "hello", ComposePrompt("  \n", "hello"))
	assert.Equal(t, "a\nb\n\nNew Query: c", ComposePrompt("a\nb", "c"))
}

func TestSupport_FirstQueryHasNoMemoryPrefix(t *testing.T) {
	runner := &stubRunner{response: "ok"}
	mem := memory.NewService(memory.NewInMemoryRepository(), memory.ServiceConfig{})
	svc, publisher := newService(runner, mem, &upperTranslator{})

	out, err := svc.Support(context.Background(), "s1", "where is my order")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, agents.AgentSupport, runner.calls[0].agent)
	assert.Equal(t, "WHERE IS MY ORDER", runner.calls[0].prompt)
	assert.Equal(t, "s1", runner.calls[0].session)

	received := publisher.OfType(events.TypeQueryReceived)
	require.Len(t, received, 1)
	var payload events.QueryReceived
	require.NoError(t, received[0].Decode(&payload))
	assert.Equal(t, "support", payload.Agent)
	assert.Equal(t, "where is my order", payload.Prompt)
}

func TestSupport_RecallsEarlierTranslatedQueries(t *testing.T) {
	runner := &stubRunner{response: "ok"}
	mem := memory.NewService(memory.NewInMemoryRepository(), memory.ServiceConfig{})
	svc, _ := newService(runner, mem, &upperTranslator{})
	ctx := context.Background()

	_, err := svc.Support(ctx, "s1", "first")
	require.NoError(t, err)
	_, err = svc.Support(ctx, "s1", "second")
	require.NoError(t, err)
	_, err = svc.Support(ctx, "other", "third")
	require.NoError(t, err)

	require.Len(t, runner.calls, 3)
	assert.Equal(t, "FIRST\n\nNew Query: SECOND", runner.calls[1].prompt)
	assert.Equal(t, "THIRD", runner.calls[2].prompt)

	history, err := mem.Recent(ctx, "s1", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"FIRST", "SECOND"}, history)
}

func TestSupport_BlankSessionUsesDefault(t *testing.T) {
	runner := &stubRunner{response: "ok"}
	mem := memory.NewService(memory.NewInMemoryRepository(), memory.ServiceConfig{})
	svc, _ := newService(runner, mem, &upperTranslator{})

	_, err := svc.Support(context.Background(), "  ", "hi")
	require.NoError(t, err)

	history, err := mem.Recent(context.Background(), "default_user", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"HI"}, history)
}

func TestSupport_MemoryReadFailureIsNotFatal(t *testing.T) {
	runner := &stubRunner{response: "ok"}
	mem := &failingMemory{}
	svc, _ := newService(runner, mem, &upperTranslator{})

	out, err := svc.Support(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "HELLO", runner.calls[0].prompt)
	assert.Equal(t, []string{"HELLO"}, mem.appended)
}

func TestSupport_AgentFailureKeepsMemory(t *testing.T) {
	runner := &stubRunner{err: errors.ErrProviderFailure}
	mem := &failingMemory{}
	svc, _ := newService(runner, mem, &upperTranslator{})

	_, err := svc.Support(context.Background(), "s1", "hello")
	assert.ErrorIs(t, err, errors.ErrProviderFailure)
	assert.Equal(t, []string{"HELLO"}, mem.appended)
}

func TestSupport_BlankPrompt(t *testing.T) {
	runner := &stubRunner{response: "ok"}
	tr := &upperTranslator{}
	svc, publisher := newService(runner, &failingMemory{}, tr)

	_, err := svc.Support(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Empty(t, runner.calls)
	assert.Zero(t, tr.calls)
	assert.Empty(t, publisher.Events())
}

func TestDashboard_UsesRawPromptWithoutMemory(t *testing.T) {
	runner := &stubRunner{response: "Revenue is up"}
	mem := &failingMemory{}
	tr := &upperTranslator{}
	svc, publisher := newService(runner, mem, tr)

	out, err := svc.Dashboard(context.Background(), "owner", "total revenue?")
	require.NoError(t, err)
	assert.Equal(t, "Revenue is up", out)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, agents.AgentDashboard, runner.calls[0].agent)
	assert.Equal(t, "total revenue?", runner.calls[0].prompt)
	assert.Empty(t, mem.appended)
	assert.Zero(t, tr.calls)
	assert.Len(t, publisher.OfType(events.TypeQueryReceived), 1)
}

func TestSupport_EndToEndWithExecutor(t *testing.T) {
	env := studiotest.Seeded(t)
	catalog := env.Catalog(t)
	registry, err := agents.NewDefaultRegistry(catalog)
	require.NoError(t, err)

	provider := aifake.New(
		aifake.Call("get_order_by_id", map[string]interface{}{"order_id": "ORDER_2"}),
		aifake.Text("ORDER_2 for Evening HIIT is pending."),
	)
	executor := agents.NewExecutor(provider, catalog, registry, nil, nil, agents.ExecutorConfig{Model: "test-model"}, logger.Nop())
	mem := memory.NewService(memory.NewInMemoryRepository(), memory.ServiceConfig{})
	svc := NewService(Deps{Runner: executor, Memory: mem}, logger.Nop())

	out, err := svc.Support(context.Background(), "s1", "What is the status of ORDER_2?")
	require.NoError(t, err)
	assert.Equal(t, "ORDER_2 for Evening HIIT is pending.", out)

	reqs := provider.Requests()
	require.Len(t, reqs, 2)
	toolResult := reqs[1].Messages[len(reqs[1].Messages)-1]
	assert.Contains(t, toolResult.Content, `"status":"pending"`)
}
