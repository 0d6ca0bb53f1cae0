package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// stubSynchronizer counts SyncAll calls.
type stubSynchronizer struct {
	driving.Synchronizer
	calls atomic.Int32
	err   error
}

func (s *stubSynchronizer) SyncAll(context.Context) (int, error) {
	s.calls.Add(1)
	return 3, s.err
}

// stubSweeper counts Sweep calls.
type stubSweeper struct {
	driving.SessionService
	calls atomic.Int32
}

func (s *stubSweeper) Sweep(context.Context) (int, error) {
	s.calls.Add(1)
	return 2, nil
}

func schedulerConfig(interval time.Duration) domain.SchedulerConfig {
	return domain.SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]domain.TaskConfig{
			domain.TaskIDRootResync:   {Enabled: true, Interval: interval},
			domain.TaskIDSessionSweep: {Enabled: true, Interval: interval},
		},
	}
}

func TestScheduler_InitialiseTasks(t *testing.T) {
	store := memory.NewSchedulerStore()
	s := NewScheduler(schedulerConfig(time.Hour), store, &stubSynchronizer{}, nil)

	require.NoError(t, s.initialiseTasks(context.Background()))

	resync, err := store.GetTask(context.Background(), domain.TaskIDRootResync)
	require.NoError(t, err)
	require.NotNil(t, resync)
	assert.True(t, resync.Enabled)
	assert.Equal(t, time.Hour, resync.Interval)

	sweep, err := store.GetTask(context.Background(), domain.TaskIDSessionSweep)
	require.NoError(t, err)
	require.NotNil(t, sweep)
	assert.False(t, sweep.Enabled, "no session service means no sweep")
}

func TestScheduler_EnsureTask_UpdateInterval(t *testing.T) {
	store := memory.NewSchedulerStore()
	s := NewScheduler(schedulerConfig(time.Hour), store, nil, nil)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	ctx := context.Background()
	require.NoError(t, s.ensureTask(ctx, "t", "T", domain.TaskConfig{Enabled: true, Interval: time.Hour}))
	require.NoError(t, s.ensureTask(ctx, "t", "T", domain.TaskConfig{Enabled: true, Interval: 2 * time.Hour}))

	task, err := store.GetTask(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, task.Interval)
	assert.Equal(t, fixed.Add(2*time.Hour), task.NextRun)
}

func TestScheduler_RunsDueTasks(t *testing.T) {
	store := memory.NewSchedulerStore()
	syncer := &stubSynchronizer{}
	sweeper := &stubSweeper{}
	s := NewScheduler(schedulerConfig(time.Hour), store, syncer, sweeper)

	ctx := context.Background()
	past := time.Now().Add(-time.Minute)
	for _, id := range []string{domain.TaskIDRootResync, domain.TaskIDSessionSweep} {
		require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: id, Enabled: true, Interval: time.Hour, NextRun: past}))
	}

	s.checkAndRunDueTasks(ctx)
	s.wg.Wait()

	assert.Equal(t, int32(1), syncer.calls.Load())
	assert.Equal(t, int32(1), sweeper.calls.Load())

	history, err := store.GetTaskHistory(ctx, domain.TaskIDRootResync, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, 3, history[0].ItemsProcessed)

	task, err := store.GetTask(ctx, domain.TaskIDRootResync)
	require.NoError(t, err)
	assert.True(t, task.NextRun.After(time.Now()))

	// Not due again until the interval elapses.
	s.checkAndRunDueTasks(ctx)
	s.wg.Wait()
	assert.Equal(t, int32(1), syncer.calls.Load())
}

func TestScheduler_RecordsFailure(t *testing.T) {
	store := memory.NewSchedulerStore()
	syncer := &stubSynchronizer{err: errors.New("disk gone")}
	s := NewScheduler(schedulerConfig(time.Hour), store, syncer, nil)

	ctx := context.Background()
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: domain.TaskIDRootResync, Enabled: true, Interval: time.Hour}))

	s.checkAndRunDueTasks(ctx)
	s.wg.Wait()

	task, err := store.GetTask(ctx, domain.TaskIDRootResync)
	require.NoError(t, err)
	assert.Equal(t, "disk gone", task.LastError)

	history, err := store.GetTaskHistory(ctx, domain.TaskIDRootResync, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
}

func TestScheduler_UnknownTaskIgnored(t *testing.T) {
	store := memory.NewSchedulerStore()
	s := NewScheduler(schedulerConfig(time.Hour), store, nil, nil)

	ctx := context.Background()
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "mystery", Enabled: true}))

	s.checkAndRunDueTasks(ctx)
	s.wg.Wait()

	history, err := store.GetTaskHistory(ctx, "mystery", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScheduler_StartStop(t *testing.T) {
	store := memory.NewSchedulerStore()
	s := NewScheduler(schedulerConfig(time.Hour), store, &stubSynchronizer{}, &stubSweeper{})
	s.tick = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		tasks, _ := store.ListTasks(context.Background())
		return len(tasks) == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	assert.NoError(t, s.Stop(), "second stop is a no-op")
}

func TestScheduler_ContextCancel(t *testing.T) {
	s := NewScheduler(schedulerConfig(time.Hour), memory.NewSchedulerStore(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_Disabled(t *testing.T) {
	s := NewScheduler(domain.SchedulerConfig{}, memory.NewSchedulerStore(), nil, nil)
	assert.NoError(t, s.Start(context.Background()))
}
