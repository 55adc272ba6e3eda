package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimedReminder(t *testing.T, store *memory.ReminderStore, retryCount, maxRetries int) models.TaskReminder {
	t.Helper()
	ctx := context.Background()
	r := pendingReminder("r1", baseTime)
	r.Status = models.StatusPending
	r.RetryCount = retryCount
	r.MaxRetries = maxRetries
	require.NoError(t, store.Insert(ctx, &r))
	ok, err := store.Claim(ctx, r.ID, baseTime, baseTime)
	require.NoError(t, err)
	require.True(t, ok)
	r.Status = models.StatusClaimed
	return r
}

func TestHandleFailure_SchedulesBackoff(t *testing.T) {
	store := memory.NewReminderStore()
	c := NewRetryCoordinator(store)
	r := claimedReminder(t, store, 1, 3)

	status, err := c.HandleFailure(context.Background(), r, errors.New("boom"), baseTime)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRetryScheduled, status)

	got, _ := store.FindByID(context.Background(), "r1")
	assert.Equal(t, 2, got.RetryCount)
	assert.Equal(t, baseTime.Add(10*time.Minute), *got.NextRetry)
	assert.Equal(t, "boom", got.LastError)
}

func TestHandleFailure_ZeroMaxRetriesUsesDefault(t *testing.T) {
	store := memory.NewReminderStore()
	c := NewRetryCoordinator(store)
	r := claimedReminder(t, store, 0, 0)

	status, err := c.HandleFailure(context.Background(), r, errors.New("boom"), baseTime)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRetryScheduled, status)
}

func TestHandleFailure_Abandons(t *testing.T) {
	store := memory.NewReminderStore()
	c := NewRetryCoordinator(store)
	var hooked []string
	c.OnAbandon = func(ctx context.Context, r models.TaskReminder) { hooked = append(hooked, r.ID) }
	r := claimedReminder(t, store, 3, 3)

	status, err := c.HandleFailure(context.Background(), r, errors.New("boom"), baseTime)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbandoned, status)
	assert.Equal(t, []string{"r1"}, hooked)
}

func TestHandleFailure_RequiresClaim(t *testing.T) {
	store := memory.NewReminderStore()
	c := NewRetryCoordinator(store)
	r := pendingReminder("r1", baseTime)
	r.Status = models.StatusPending
	require.NoError(t, store.Insert(context.Background(), &r))

	_, err := c.HandleFailure(context.Background(), r, errors.New("boom"), baseTime)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}
