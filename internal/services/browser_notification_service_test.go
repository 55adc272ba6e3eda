package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T, store *memory.NotificationStore, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, store.CreateIfAbsent(context.Background(), &models.BrowserNotification{
			ID:        fmt.Sprintf("%s-%d", userID, i),
			UserID:    userID,
			Type:      models.BrowserNotificationType,
			Title:     fmt.Sprintf("n%d", i),
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestBrowserNotifications_ListNewestFirstAndCapped(t *testing.T) {
	store := memory.NewNotificationStore()
	svc := NewBrowserNotificationService(store, fixedClock(baseTime))
	seedNotifications(t, store, "u1", 60)
	seedNotifications(t, store, "u2", 1)

	list, err := svc.List(context.Background(), "u1", false)
	require.NoError(t, err)
	require.Len(t, list, DefaultNotificationListLimit)
	assert.Equal(t, "n59", list[0].Title)
}

func TestBrowserNotifications_ReadFlow(t *testing.T) {
	store := memory.NewNotificationStore()
	svc := NewBrowserNotificationService(store, fixedClock(baseTime))
	ctx := context.Background()
	seedNotifications(t, store, "u1", 3)

	require.NoError(t, svc.MarkRead(ctx, "u1", "u1-0"))
	unread, err := svc.List(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	assert.ErrorIs(t, svc.MarkRead(ctx, "u2", "u1-1"), apperrors.ErrNotFound, "other users' notifications are invisible")

	n, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = svc.List(ctx, "u1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestBrowserNotifications_ClickDeleteClear(t *testing.T) {
	store := memory.NewNotificationStore()
	svc := NewBrowserNotificationService(store, fixedClock(baseTime))
	ctx := context.Background()
	seedNotifications(t, store, "u1", 3)

	require.NoError(t, svc.MarkClicked(ctx, "u1", "u1-2"))
	list, _ := svc.List(ctx, "u1", false)
	assert.True(t, list[0].Clicked)

	require.NoError(t, svc.Delete(ctx, "u1", "u1-2"))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", "u1-2"), apperrors.ErrNotFound)

	n, err := svc.ClearAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err = svc.List(ctx, "u1", false)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestBrowserNotifications_CreateTest(t *testing.T) {
	store := memory.NewNotificationStore()
	svc := NewBrowserNotificationService(store, fixedClock(baseTime))

	n, err := svc.CreateTest(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "Test Notification", n.Title)
	assert.Equal(t, baseTime, n.CreatedAt)

	list, _ := svc.List(context.Background(), "u1", true)
	assert.Len(t, list, 1)
}
