package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func newOverdueFixture(now time.Time) (*OverdueScanner, *memory.TaskStore, *memory.ReminderStore) {
	tasks := memory.NewTaskStore()
	reminders := memory.NewReminderStore()
	prefSvc := NewPreferenceService(memory.NewPreferenceStore(), fixedClock(now))
	scheduler := NewReminderScheduler(reminders, tasks, prefSvc, fixedClock(now))
	return NewOverdueScanner(tasks, reminders, scheduler, 0), tasks, reminders
}

func TestScanOverdue_CreatesOnePerTask(t *testing.T) {
	scanner, tasks, reminders := newOverdueFixture(baseTime)
	tasks.PutProject(models.ProjectSnapshot{ID: "p1", Name: "Q1"})
	tasks.PutTask(models.TaskSnapshot{ID: "late", UserID: "u1", Name: "File taxes", ProjectID: "p1", Priority: models.PriorityHigh, DueDate: timePtr(baseTime.Add(-24 * time.Hour))})
	tasks.PutTask(models.TaskSnapshot{ID: "done", UserID: "u1", Name: "Done", DueDate: timePtr(baseTime.Add(-time.Hour)), Completed: true})
	tasks.PutTask(models.TaskSnapshot{ID: "future", UserID: "u1", Name: "Later", DueDate: timePtr(baseTime.Add(time.Hour))})
	tasks.PutTask(models.TaskSnapshot{ID: "undated", UserID: "u1", Name: "Someday"})

	n, err := scanner.ScanOverdue(context.Background(), baseTime)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all := reminders.All()
	require.Len(t, all, 1)
	r := all[0]
	assert.Equal(t, "late", r.TaskID)
	assert.Equal(t, models.NotificationTaskOverdue, r.NotificationType)
	assert.Equal(t, baseTime, r.ScheduledTime)
	assert.Equal(t, "Overdue Task: File taxes", r.Title)
	assert.Equal(t, "Your task 'File taxes' is overdue. Please review and update it. (Project: Q1)", r.Message)
	assert.Equal(t, []models.Channel{models.ChannelBrowser, models.ChannelEmail}, r.Channels)
	assert.Equal(t, models.PriorityHigh, r.Priority)
}

func TestScanOverdue_Dedupe(t *testing.T) {
	scanner, tasks, reminders := newOverdueFixture(baseTime)
	tasks.PutTask(models.TaskSnapshot{ID: "late", UserID: "u1", Name: "File taxes", DueDate: timePtr(baseTime.Add(-time.Hour))})
	ctx := context.Background()

	n, err := scanner.ScanOverdue(ctx, baseTime)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Still pending, so a second scan adds nothing.
	n, err = scanner.ScanOverdue(ctx, baseTime.Add(15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	id := reminders.All()[0].ID
	ok, err := reminders.Claim(ctx, id, baseTime, baseTime.Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, reminders.MarkSent(ctx, id, baseTime))

	n, err = scanner.ScanOverdue(ctx, baseTime.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "sent within the last hour")

	n, err = scanner.ScanOverdue(ctx, baseTime.Add(61*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, reminders.All(), 2)
}

func TestScanOverdue_AbandonedDoesNotBlock(t *testing.T) {
	scanner, tasks, reminders := newOverdueFixture(baseTime)
	tasks.PutTask(models.TaskSnapshot{ID: "late", UserID: "u1", Name: "File taxes", DueDate: timePtr(baseTime.Add(-time.Hour))})
	ctx := context.Background()

	_, err := scanner.ScanOverdue(ctx, baseTime)
	require.NoError(t, err)
	id := reminders.All()[0].ID
	_, err = reminders.Claim(ctx, id, baseTime, baseTime)
	require.NoError(t, err)
	require.NoError(t, reminders.Abandon(ctx, id, "smtp down", baseTime))

	n, err := scanner.ScanOverdue(ctx, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestScanOverdue_CancelledContext(t *testing.T) {
	scanner, tasks, _ := newOverdueFixture(baseTime)
	tasks.PutTask(models.TaskSnapshot{ID: "late", UserID: "u1", Name: "File taxes", DueDate: timePtr(baseTime.Add(-time.Hour))})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := scanner.ScanOverdue(ctx, baseTime)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

func TestScanOverdue_PagesPastLimit(t *testing.T) {
	tasks := memory.NewTaskStore()
	reminders := memory.NewReminderStore()
	prefSvc := NewPreferenceService(memory.NewPreferenceStore(), fixedClock(baseTime))
	scheduler := NewReminderScheduler(reminders, tasks, prefSvc, fixedClock(baseTime))
	scanner := NewOverdueScanner(tasks, reminders, scheduler, 2)

	due := baseTime.Add(-time.Hour)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		tasks.PutTask(models.TaskSnapshot{ID: id, UserID: "u1", Name: "Task " + id, DueDate: timePtr(due)})
	}
	ctx := context.Background()

	n, err := scanner.ScanOverdue(ctx, baseTime)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// The oldest tasks are now deduped; nothing past them is starved.
	tasks.PutTask(models.TaskSnapshot{ID: "f", UserID: "u1", Name: "Task f", DueDate: timePtr(baseTime.Add(-time.Minute))})
	n, err = scanner.ScanOverdue(ctx, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, reminders.All(), 6)
}
