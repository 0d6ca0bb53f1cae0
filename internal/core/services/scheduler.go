package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const (
	defaultTick = time.Minute

	// historyKeep is how many results are kept per task.
	historyKeep = 100
)

// Scheduler runs the background tasks of a long-lived process: resyncing
// stored roots and sweeping expired session tokens.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	sync     driving.Synchronizer
	sessions driving.SessionService
	tick     time.Duration
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler. Either service may be nil, which
// disables its task.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	syncer driving.Synchronizer,
	sessions driving.SessionService,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		sync:     syncer,
		sessions: sessions,
		tick:     defaultTick,
		now:      time.Now,
		inFlight: make(map[string]bool),
	}
}

// Start runs the scheduler loop until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logger.Debug("scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: initialise tasks: %v", err)
	}
	return s.run(ctx)
}

// Stop ends the loop and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	tasks := []struct {
		id, name string
		enabled  bool
	}{
		{domain.TaskIDRootResync, "Root Resync", s.sync != nil},
		{domain.TaskIDSessionSweep, "Session Sweep", s.sessions != nil},
	}
	for _, t := range tasks {
		cfg := s.config.GetTaskConfig(t.id)
		cfg.Enabled = cfg.Enabled && t.enabled && cfg.Interval > 0
		if err := s.ensureTask(ctx, t.id, t.name, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  s.now().Add(cfg.Interval),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = s.now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}
	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a task in the background unless it is already running.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		return
	}
	s.inFlight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()

		result := &domain.TaskResult{TaskID: task.ID, StartedAt: s.now()}

		var err error
		switch task.ID {
		case domain.TaskIDRootResync:
			result.ItemsProcessed, err = s.runRootResync(ctx)
		case domain.TaskIDSessionSweep:
			result.ItemsProcessed, err = s.runSessionSweep(ctx)
		default:
			logger.Warn("scheduler: unknown task %s", task.ID)
			return
		}

		result.EndedAt = s.now()
		if err != nil {
			result.Error = err.Error()
			task.LastError = err.Error()
			logger.Warn("scheduler: %s: %v", task.ID, err)
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		// Bookkeeping outlives a cancelled run.
		bg := context.WithoutCancel(ctx)
		if err := s.store.SaveTask(bg, task); err != nil {
			logger.Warn("scheduler: save task %s: %v", task.ID, err)
		}
		if err := s.store.RecordResult(bg, result); err != nil {
			logger.Warn("scheduler: record result for %s: %v", task.ID, err)
		}
		if err := s.store.PruneHistory(bg, historyKeep); err != nil {
			logger.Warn("scheduler: prune history: %v", err)
		}
	}()
}

func (s *Scheduler) runRootResync(ctx context.Context) (int, error) {
	if s.sync == nil {
		return 0, nil
	}
	return s.sync.SyncAll(ctx)
}

func (s *Scheduler) runSessionSweep(ctx context.Context) (int, error) {
	if s.sessions == nil {
		return 0, nil
	}
	return s.sessions.Sweep(ctx)
}
