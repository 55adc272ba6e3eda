package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultNotificationListLimit caps how many in-app notifications a listing returns.
const DefaultNotificationListLimit = 50

// BrowserNotificationService manages a user's in-app notifications.
type BrowserNotificationService struct {
	store repository.BrowserNotificationStore
	now   Clock
}

// NewBrowserNotificationService creates a new instance of BrowserNotificationService.
func NewBrowserNotificationService(store repository.BrowserNotificationStore, clock Clock) *BrowserNotificationService {
	return &BrowserNotificationService{store: store, now: clockOrDefault(clock)}
}

// List returns the user's notifications, newest first.
func (s *BrowserNotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.BrowserNotification, error) {
	items, err := s.store.ListByUser(ctx, userID, unreadOnly, DefaultNotificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if items == nil {
		items = []models.BrowserNotification{}
	}
	return items, nil
}

func (s *BrowserNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.store.MarkRead(ctx, userID, id, s.now())
}

func (s *BrowserNotificationService) MarkClicked(ctx context.Context, userID, id string) error {
	return s.store.MarkClicked(ctx, userID, id)
}

// MarkAllRead returns the number of notifications that changed.
func (s *BrowserNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

func (s *BrowserNotificationService) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

// ClearAll deletes every notification the user has.
func (s *BrowserNotificationService) ClearAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.DeleteAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{"user_id": userID, "deleted": n}).Info("Cleared notifications")
	return n, nil
}

// CreateTest stores a sample notification so users can check their setup.
func (s *BrowserNotificationService) CreateTest(ctx context.Context, userID string) (*models.BrowserNotification, error) {
	n := &models.BrowserNotification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      models.BrowserNotificationType,
		Title:     "Test Notification",
		Message:   "This is a test notification from Aurum Life",
		Priority:  models.PriorityMedium,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateIfAbsent(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create test notification: %w", err)
	}
	return n, nil
}
