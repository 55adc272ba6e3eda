package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/sirupsen/logrus"
)

// RetryBackoffStep is the linear backoff unit: retries wait 5, 10, then 15 minutes.
const RetryBackoffStep = 5 * time.Minute

// RetryCoordinator records failed dispatches and gives up once the retry budget is spent.
type RetryCoordinator struct {
	reminders repository.ReminderStore
	// OnAbandon is called after a reminder is abandoned. May be nil.
	OnAbandon func(ctx context.Context, r models.TaskReminder)
}

// NewRetryCoordinator creates a new instance of RetryCoordinator.
func NewRetryCoordinator(reminders repository.ReminderStore) *RetryCoordinator {
	return &RetryCoordinator{reminders: reminders}
}

// HandleFailure moves a claimed reminder to retry_scheduled, or to abandoned once
// retry_count has reached max_retries. It returns the status written.
func (c *RetryCoordinator) HandleFailure(ctx context.Context, r models.TaskReminder, cause error, now time.Time) (models.ReminderStatus, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}
	lastErr := ""
	if cause != nil {
		lastErr = cause.Error()
	}
	fields := logrus.Fields{
		"reminder_id": r.ID,
		"task_id":     r.TaskID,
		"retry_count": r.RetryCount,
	}

	if r.RetryCount < maxRetries {
		if !r.Status.CanTransition(models.StatusRetryScheduled) {
			return r.Status, fmt.Errorf("reminder %s from %s: %w", r.ID, r.Status, apperrors.ErrInvalidTransition)
		}
		next := r.RetryCount + 1
		nextRetry := now.Add(time.Duration(next) * RetryBackoffStep)
		if err := c.reminders.ScheduleRetry(ctx, r.ID, next, nextRetry, lastErr, now); err != nil {
			return r.Status, err
		}
		logger.Log.WithFields(fields).WithField("next_retry", nextRetry).Warnf("Scheduling retry %d for reminder", next)
		return models.StatusRetryScheduled, nil
	}

	if !r.Status.CanTransition(models.StatusAbandoned) {
		return r.Status, fmt.Errorf("reminder %s from %s: %w", r.ID, r.Status, apperrors.ErrInvalidTransition)
	}
	if err := c.reminders.Abandon(ctx, r.ID, lastErr, now); err != nil {
		return r.Status, err
	}
	logger.Log.WithFields(fields).WithField("last_error", lastErr).Error("Max retries exceeded for reminder")
	if c.OnAbandon != nil {
		r.Status = models.StatusAbandoned
		r.LastError = lastErr
		c.OnAbandon(ctx, r)
	}
	return models.StatusAbandoned, nil
}
