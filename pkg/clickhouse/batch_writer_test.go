package clickhouse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]int
	fail    bool
}

func (r *recorder) flush(_ context.Context, batch []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("clickhouse down")
	}
	r.batches = append(r.batches, batch)
	return nil
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}

func TestBatchWriter_FlushOnMaxSize(t *testing.T) {
	rec := &recorder{}
	bw := NewBatchWriter(BatchWriterConfig[int]{
		FlushFunc:    rec.flush,
		TableName:    "ai_usage",
		MaxBatchSize: 3,
		MaxAge:       10 * time.Second,
	})

	ctx := context.Background()
	require.NoError(t, bw.Add(ctx, 1))
	require.NoError(t, bw.Add(ctx, 2))
	require.NoError(t, bw.Add(ctx, 3))

	rec.mu.Lock()
	require.Len(t, rec.batches, 1)
	assert.Equal(t, []int{1, 2, 3}, rec.batches[0])
	rec.mu.Unlock()
	assert.Equal(t, 0, bw.BufferSize())
}

func TestBatchWriter_FlushOnTimer(t *testing.T) {
	rec := &recorder{}
	bw := NewBatchWriter(BatchWriterConfig[int]{
		FlushFunc:    rec.flush,
		TableName:    "ai_usage",
		MaxBatchSize: 100,
		MaxAge:       50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bw.Start(ctx)

	require.NoError(t, bw.Add(ctx, 1))
	require.NoError(t, bw.Add(ctx, 2))

	assert.Eventually(t, func() bool { return rec.total() == 2 }, 2*time.Second, 20*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))
}

func TestBatchWriter_GracefulStopFlushesRemainder(t *testing.T) {
	rec := &recorder{}
	bw := NewBatchWriter(BatchWriterConfig[int]{
		FlushFunc:    rec.flush,
		TableName:    "ai_usage",
		MaxBatchSize: 100,
		MaxAge:       10 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bw.Start(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, bw.Add(ctx, i))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))

	assert.Equal(t, 3, rec.total())
	assert.False(t, bw.Stats().Running)
}

func TestBatchWriter_FailedFlushIsRetained(t *testing.T) {
	rec := &recorder{fail: true}
	bw := NewBatchWriter(BatchWriterConfig[int]{
		FlushFunc:    rec.flush,
		TableName:    "ai_usage",
		MaxBatchSize: 2,
	})

	ctx := context.Background()
	require.NoError(t, bw.Add(ctx, 1))
	assert.Error(t, bw.Add(ctx, 2))
	assert.Equal(t, 2, bw.BufferSize())
	assert.Equal(t, 1, bw.Stats().FlushFailures)

	rec.mu.Lock()
	rec.fail = false
	rec.mu.Unlock()

	require.NoError(t, bw.Flush(ctx))
	assert.Equal(t, 2, rec.total())
	assert.Equal(t, 0, bw.BufferSize())
}

func TestBatchWriter_ConcurrentAdds(t *testing.T) {
	rec := &recorder{}
	bw := NewBatchWriter(BatchWriterConfig[int]{
		FlushFunc:    rec.flush,
		TableName:    "ai_usage",
		MaxBatchSize: 10,
		MaxAge:       time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bw.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_ = bw.Add(ctx, idx)
		}(i)
	}
	wg.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))

	assert.Equal(t, 50, rec.total())
}
