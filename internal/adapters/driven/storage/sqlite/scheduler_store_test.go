package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

func TestSchedulerStoreTasks(t *testing.T) {
	ctx := context.Background()
	scheduler := newTestStore(t).SchedulerStore()

	// Missing task is nil, not an error.
	task, err := scheduler.GetTask(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, task)

	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	saved := &domain.ScheduledTask{
		ID:       domain.TaskIDChannelSync,
		Name:     "Channel sync",
		Interval: time.Minute,
		NextRun:  now.Add(time.Minute),
		Enabled:  true,
	}
	require.NoError(t, scheduler.SaveTask(ctx, saved))

	got, err := scheduler.GetTask(ctx, domain.TaskIDChannelSync)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Channel sync", got.Name)
	assert.Equal(t, time.Minute, got.Interval)
	assert.True(t, got.Enabled)
	assert.True(t, got.LastRun.IsZero())

	// Update in place.
	saved.LastRun = now
	saved.LastSuccess = now
	saved.LastError = ""
	require.NoError(t, scheduler.SaveTask(ctx, saved))

	got, err = scheduler.GetTask(ctx, domain.TaskIDChannelSync)
	require.NoError(t, err)
	assert.Equal(t, now, got.LastRun.UTC())

	require.NoError(t, scheduler.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDRetentionCleanup,
		Name:     "Retention cleanup",
		Interval: 24 * time.Hour,
		Enabled:  true,
	}))

	tasks, err := scheduler.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	assert.ErrorIs(t, scheduler.SaveTask(ctx, nil), domain.ErrInvalidInput)
}

func TestSchedulerStoreResultsAndPrune(t *testing.T) {
	ctx := context.Background()
	scheduler := newTestStore(t).SchedulerStore()
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, scheduler.RecordResult(ctx, &domain.TaskResult{
			TaskID:         domain.TaskIDChannelSync,
			StartedAt:      now.Add(time.Duration(i) * time.Minute),
			EndedAt:        now.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Success:        i%2 == 0,
			ItemsProcessed: i,
		}))
	}

	require.NoError(t, scheduler.PruneHistory(ctx, 2))

	// Only the two most recent results survive; verify via raw count.
	store := scheduler.(*schedulerStore).store
	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM task_results").Scan(&count))
	assert.Equal(t, 2, count)
}
