package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"studiodesk/internal/domain/ai_usage"
	"studiodesk/pkg/clickhouse"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

const aiUsageSchema = `
CREATE TABLE IF NOT EXISTS ai_usage (
	timestamp         DateTime64(3, 'UTC'),
	event_id          String,
	session_id        String,
	agent             LowCardinality(String),
	provider          LowCardinality(String),
	model             LowCardinality(String),
	prompt_tokens     UInt32,
	completion_tokens UInt32,
	total_tokens      UInt32,
	iterations        UInt16,
	tool_calls_count  UInt16,
	latency_ms        UInt32,
	success           Bool
) ENGINE = MergeTree
ORDER BY (agent, timestamp)
TTL toDateTime(timestamp) + INTERVAL 180 DAY
`

const aiUsageInsert = `
INSERT INTO ai_usage (
	timestamp, event_id, session_id,
	agent, provider, model,
	prompt_tokens, completion_tokens, total_tokens,
	iterations, tool_calls_count, latency_ms, success
)`

// AIUsageRepository implements ai_usage.Repository for ClickHouse.
// Rows are buffered by a batch writer and inserted in bulk.
type AIUsageRepository struct {
	conn        driver.Conn
	batchWriter *clickhouse.BatchWriter[*ai_usage.UsageLog]
	log         *logger.Logger
}

// NewAIUsageRepository creates a new AI usage repository with batch writer
func NewAIUsageRepository(conn driver.Conn) *AIUsageRepository {
	repo := &AIUsageRepository{
		conn: conn,
		log:  logger.Get().With("component", "ai_usage_repository"),
	}

	repo.batchWriter = clickhouse.NewBatchWriter(clickhouse.BatchWriterConfig[*ai_usage.UsageLog]{
		FlushFunc:    repo.flushBatch,
		TableName:    "ai_usage",
		MaxBatchSize: 200,
		MaxAge:       5 * time.Second,
	})

	return repo
}

// EnsureSchema creates the ai_usage table when missing
func (r *AIUsageRepository) EnsureSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, aiUsageSchema); err != nil {
		return errors.Wrap(err, "failed to create ai_usage table")
	}
	return nil
}

// Start begins the background flush loop
func (r *AIUsageRepository) Start(ctx context.Context) {
	r.batchWriter.Start(ctx)
}

// Stop gracefully shuts down the batch writer
func (r *AIUsageRepository) Stop(ctx context.Context) error {
	return r.batchWriter.Stop(ctx)
}

// Stats reports the batch writer buffer for the metrics collector
func (r *AIUsageRepository) Stats() clickhouse.BatchWriterStats {
	return r.batchWriter.Stats()
}

// Store buffers a usage log; it is written on the next flush
func (r *AIUsageRepository) Store(ctx context.Context, usage *ai_usage.UsageLog) error {
	if usage == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil usage log")
	}
	return r.batchWriter.Add(ctx, usage)
}

// flushBatch sends one INSERT for the whole batch using the native batch protocol
func (r *AIUsageRepository) flushBatch(ctx context.Context, batch []*ai_usage.UsageLog) error {
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()

	stmt, err := r.conn.PrepareBatch(ctx, aiUsageInsert)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}
	defer stmt.Close()

	for _, u := range batch {
		err := stmt.Append(
			u.Timestamp, u.EventID, u.SessionID,
			u.Agent, u.Provider, u.Model,
			u.PromptTokens, u.CompletionTokens, u.TotalTokens,
			u.Iterations, u.ToolCallsCount, u.LatencyMs, u.Success,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append to batch")
		}
	}

	if err := stmt.Send(); err != nil {
		return errors.Wrap(err, "failed to send batch")
	}

	r.log.Debugf("Batch inserted %d AI usage records in %v", len(batch), time.Since(start))
	return nil
}

var _ ai_usage.Repository = (*AIUsageRepository)(nil)
