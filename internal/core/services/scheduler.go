package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
	"github.com/goforscrim/scrimsync/internal/core/ports/driving"
	"github.com/goforscrim/scrimsync/internal/logger"
)

// resultHistoryKeep is how many task results are retained per task.
const resultHistoryKeep = 100

// Scheduler runs the recurring channel-sync and retention-cleanup tasks.
// Task state is persisted so restarts pick up where the last run left off.
type Scheduler struct {
	config domain.Config
	store  driven.SchedulerStore
	syncer driving.Syncer

	// tick is how often due tasks are checked for.
	tick time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler.
func NewScheduler(config domain.Config, store driven.SchedulerStore, syncer driving.Syncer) *Scheduler {
	return &Scheduler{
		config: config,
		store:  store,
		syncer: syncer,
		tick:   15 * time.Second,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("Scheduler: initialising tasks failed: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
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

// initialiseTasks ensures the built-in tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if err := s.ensureTask(ctx, domain.TaskIDChannelSync, "Channel sync", s.config.SyncInterval); err != nil {
		return err
	}
	return s.ensureTask(ctx, domain.TaskIDRetentionCleanup, "Retention cleanup", s.config.CleanupInterval)
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, interval time.Duration) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: interval,
			Enabled:  true,
			// Run promptly after first start.
			NextRun: time.Now(),
		}
	} else if task.Interval != interval {
		task.Interval = interval
		task.NextRun = time.Now().Add(interval)
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("Scheduler: listing tasks failed: %v", err)
		return
	}

	now := time.Now()
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

// runTask executes a single task and persists its outcome.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDChannelSync:
			result.ItemsProcessed, err = s.runChannelSync(ctx)
		case domain.TaskIDRetentionCleanup:
			result.ItemsProcessed, err = s.syncer.Cleanup(ctx)
		default:
			logger.Warn("Scheduler: unknown task id %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("Scheduler: saving task %s failed: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("Scheduler: recording result for %s failed: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, resultHistoryKeep); pruneErr != nil {
			logger.Warn("Scheduler: pruning history failed: %v", pruneErr)
		}
	}()
}

// runChannelSync syncs the configured channels in batches and reports how
// many records changed. A sync already running (e.g. triggered manually
// over the API) is not an error; the next tick retries.
func (s *Scheduler) runChannelSync(ctx context.Context) (int, error) {
	batchSize := s.config.BatchSize
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}

	items := 0
	for start := 0; start < len(s.config.Channels); start += batchSize {
		end := start + batchSize
		if end > len(s.config.Channels) {
			end = len(s.config.Channels)
		}

		report, err := s.syncer.SyncChannels(ctx, s.config.Channels[start:end], domain.SyncIncremental)
		if errors.Is(err, domain.ErrSyncInProgress) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items += report.Added + report.Merged + report.Deleted
	}
	return items, nil
}
