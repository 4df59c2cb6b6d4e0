package shared

import (
	"context"
	"time"

	"studiodesk/internal/metrics"
	"studiodesk/pkg/logger"
)

// StatsMiddleware records tool usage metrics
type StatsMiddleware struct {
	Log *logger.Logger
}

// Wrap adds call counting, latency tracking and a debug log line around a tool function
func (m StatsMiddleware) Wrap(name string, fn ToolFunc) ToolFunc {
	return func(ctx context.Context, args Args) (interface{}, error) {
		start := time.Now()
		result, err := fn(ctx, args)
		duration := time.Since(start)

		metrics.RecordToolCall(name, duration, err)

		if m.Log != nil {
			fields := []interface{}{"duration", duration, "success", err == nil}
			if inv, ok := InvocationFrom(ctx); ok {
				fields = append(fields, "agent", inv.Agent, "session_id", inv.SessionID)
			}
			if err != nil {
				fields = append(fields, "error", err)
			}
			m.Log.Debugw("Tool call finished", fields...)
		}

		return result, err
	}
}
