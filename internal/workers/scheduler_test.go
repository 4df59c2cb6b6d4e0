package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

type mockWorker struct {
	*BaseWorker
	runs    atomic.Int32
	runFunc func(ctx context.Context) error
}

func newMockWorker(name string, interval time.Duration) *mockWorker {
	return &mockWorker{BaseWorker: NewBaseWorker(name, interval, logger.Nop())}
}

func (m *mockWorker) Run(ctx context.Context) error {
	m.runs.Add(1)
	if m.runFunc != nil {
		return m.runFunc(ctx)
	}
	return nil
}

func stop(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(logger.Nop())
	w := newMockWorker("w1", 50*time.Millisecond)
	s.RegisterWorker(w)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return w.runs.Load() >= 2 }, time.Second, 10*time.Millisecond)

	stop(t, s)
	assert.False(t, s.IsRunning())
	assert.GreaterOrEqual(t, w.Health().RunCount, int64(2))
}

func TestScheduler_ParentContextCancellation(t *testing.T) {
	s := NewScheduler(logger.Nop())
	s.RegisterWorker(newMockWorker("w", 50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	stop(t, s)
}

func TestScheduler_StopTimesOut(t *testing.T) {
	s := NewScheduler(logger.Nop())
	release := make(chan struct{})
	w := newMockWorker("stuck", time.Hour)
	w.runFunc = func(context.Context) error {
		<-release
		return nil
	}
	s.RegisterWorker(w)
	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return w.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Stop(ctx)
	assert.True(t, errors.Is(err, errors.ErrTimeout))
	close(release)
}

func TestScheduler_DisabledWorker(t *testing.T) {
	s := NewScheduler(logger.Nop())
	enabled := newMockWorker("enabled", 50*time.Millisecond)
	disabled := newMockWorker("disabled", 50*time.Millisecond)
	disabled.SetEnabled(false)
	zero := newMockWorker("zero_interval", 0)

	s.RegisterWorker(enabled)
	s.RegisterWorker(disabled)
	s.RegisterWorker(zero)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool { return enabled.runs.Load() > 0 }, time.Second, 10*time.Millisecond)
	stop(t, s)

	assert.Zero(t, disabled.runs.Load())
	assert.Zero(t, zero.runs.Load())
	assert.False(t, zero.Enabled())
}

func TestScheduler_SkipsReenabledWorkerWithoutInterval(t *testing.T) {
	s := NewScheduler(logger.Nop())
	zero := newMockWorker("zero_interval", 0)
	zero.SetEnabled(true)
	s.RegisterWorker(zero)

	require.NotPanics(t, func() {
		require.NoError(t, s.Start(context.Background()))
	})
	stop(t, s)
	assert.Zero(t, zero.runs.Load())
}

func TestScheduler_RecordsFailuresAndPanics(t *testing.T) {
	s := NewScheduler(logger.Nop())
	failing := newMockWorker("failing", time.Hour)
	failing.runFunc = func(context.Context) error { return errors.ErrUnavailable }
	panicking := newMockWorker("panicking", time.Hour)
	panicking.runFunc = func(context.Context) error { panic("boom") }

	s.RegisterWorker(failing)
	s.RegisterWorker(panicking)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return failing.Health().ErrorCount == 1 && panicking.Health().ErrorCount == 1
	}, time.Second, 10*time.Millisecond)
	stop(t, s)

	assert.ErrorIs(t, failing.Health().LastError, errors.ErrUnavailable)
	assert.ErrorIs(t, panicking.Health().LastError, errors.ErrInternal)
}

func TestScheduler_CannotStartTwice(t *testing.T) {
	s := NewScheduler(logger.Nop())
	s.RegisterWorker(newMockWorker("w", time.Hour))

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))

	late := newMockWorker("late", time.Hour)
	s.RegisterWorker(late)
	assert.Len(t, s.Workers(), 1)

	stop(t, s)
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	s := NewScheduler(logger.Nop())
	assert.Error(t, s.Stop(context.Background()))
}

type fakeSweeper struct {
	removed int64
	err     error
	calls   atomic.Int32
}

func (f *fakeSweeper) Sweep(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.removed, f.err
}

func TestMemorySweepWorker(t *testing.T) {
	sweeper := &fakeSweeper{removed: 3}
	w := NewMemorySweepWorker(sweeper, time.Hour, logger.Nop())

	assert.Equal(t, "memory_sweep", w.Name())
	assert.True(t, w.Enabled())
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, int32(1), sweeper.calls.Load())

	sweeper.err = errors.ErrUnavailable
	assert.ErrorIs(t, w.Run(context.Background()), errors.ErrUnavailable)

	assert.False(t, NewMemorySweepWorker(sweeper, 0, logger.Nop()).Enabled())
}
