package shared

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/metrics"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

func testDeps() Deps { return Deps{Log: logger.Nop()} }

func TestBuilderRendersResult(t *testing.T) {
	tool := NewToolBuilder(Definition{Name: "echo", ReadOnly: true}, func(_ context.Context, args Args) (interface{}, error) {
		return map[string]string{"value": args.OptionalString("value")}, nil
	}, testDeps()).Build()

	text, err := tool.Execute(context.Background(), Args{"value": "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"x"}`, text)
	assert.Equal(t, "object", tool.Definition().Parameters["type"])
}

func TestBuilderErrorText(t *testing.T) {
	tool := NewToolBuilder(Definition{Name: "orders"}, func(context.Context, Args) (interface{}, error) {
		return nil, errors.New("connection refused")
	}, testDeps()).
		OnError(func(args Args) string { return "Error retrieving orders for client " + args.OptionalString("client_id") }).
		Build()

	text, err := tool.Execute(context.Background(), Args{"client_id": "C1"})
	require.Error(t, err)
	assert.Equal(t, "Error retrieving orders for client C1: connection refused", text)
}

func TestBuilderNotFound(t *testing.T) {
	tool := NewToolBuilder(Definition{Name: "order"}, func(context.Context, Args) (interface{}, error) {
		return nil, errors.Wrap(errors.ErrNotFound, "order X")
	}, testDeps()).NotFound("Order not found").Build()

	text, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Order not found"}`, text)
}

func TestRetryOnlyTransientErrorsOfReadOnlyTools(t *testing.T) {
	calls := 0
	flaky := func(context.Context, Args) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.ErrUnavailable
		}
		return "ok", nil
	}

	read := NewToolBuilder(Definition{Name: "read", ReadOnly: true}, flaky, testDeps()).WithRetry(3, time.Millisecond).Build()
	text, err := read.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, calls)

	calls = 0
	write := NewToolBuilder(Definition{Name: "write"}, flaky, testDeps()).WithRetry(3, time.Millisecond).Build()
	_, err = write.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	invalid := NewToolBuilder(Definition{Name: "invalid", ReadOnly: true}, func(context.Context, Args) (interface{}, error) {
		calls++
		return nil, errors.ErrInvalidInput
	}, testDeps()).WithRetry(3, time.Millisecond).Build()
	_, err = invalid.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestTimeout(t *testing.T) {
	tool := NewToolBuilder(Definition{Name: "slow"}, func(ctx context.Context, _ Args) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, testDeps()).WithTimeout(10 * time.Millisecond).Build()

	_, err := tool.Execute(context.Background(), nil)
	assert.True(t, errors.Is(err, errors.ErrTimeout))
}

func TestStatsRecordsCalls(t *testing.T) {
	before := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("stats_probe", "success"))

	tool := NewToolBuilder(Definition{Name: "stats_probe"}, func(context.Context, Args) (interface{}, error) {
		return "ok", nil
	}, testDeps()).WithStats().Build()

	ctx := WithAgent(WithSession(context.Background(), "s1"), "support")
	_, err := tool.Execute(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("stats_probe", "success")))
}

func TestArgs(t *testing.T) {
	args, err := ParseArgs(`{"id":" C1 ","n":42,"amount":"12.5","when":"2024-05-01","info":{"a":"b"},"encoded":"{\"a\":\"c\"}"}`)
	require.NoError(t, err)

	id, err := args.String("id")
	require.NoError(t, err)
	assert.Equal(t, "C1", id)
	assert.Equal(t, "42", args.OptionalString("n"))

	_, err = args.String("missing")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	amount, err := args.Float("amount")
	require.NoError(t, err)
	assert.Equal(t, 12.5, *amount)

	none, err := args.Float("missing")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = Args{"x": true}.Float("x")
	assert.Error(t, err)

	when, err := args.Date("when")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *when)

	_, err = Args{"d": "yesterday"}.Date("d")
	assert.Error(t, err)

	info, err := args.Object("info")
	require.NoError(t, err)
	assert.Equal(t, "b", info.OptionalString("a"))

	encoded, err := args.Object("encoded")
	require.NoError(t, err)
	assert.Equal(t, "c", encoded.OptionalString("a"))

	empty, err := ParseArgs("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseArgs("[1,2]")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", Money(1234.5))
	assert.Equal(t, "$0.00", Money(0))
	assert.Equal(t, "-$12.00", Money(-12))
}

func TestInvocationContext(t *testing.T) {
	_, ok := InvocationFrom(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), "s1")
	ctx = WithAgent(ctx, "dashboard")
	inv, ok := InvocationFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, Invocation{Agent: "dashboard", SessionID: "s1"}, inv)

	inv, _ = InvocationFrom(WithSession(ctx, "s2"))
	assert.Equal(t, "dashboard", inv.Agent)
	assert.Equal(t, "s2", inv.SessionID)
}

func TestArgsStringList(t *testing.T) {
	args, err := ParseArgs(`{"ids":[" A ","","B"],"one":"C","bad":[1],"empty":""}`)
	require.NoError(t, err)

	ids, err := args.StringList("ids")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids)

	one, err := args.StringList("one")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, one)

	empty, err := args.StringList("empty")
	require.NoError(t, err)
	assert.Equal(t, []string{}, empty)

	missing, err := args.StringList("missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = args.StringList("bad")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
