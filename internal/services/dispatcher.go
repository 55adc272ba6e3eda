package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/task-reminders/internal/metrics"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository"
	"github.com/Dias221467/task-reminders/pkg/email"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Dispatcher delivers a reminder on each of its channels.
type Dispatcher interface {
	// Dispatch returns the channels that succeeded. The error is nil only when every
	// channel succeeded.
	Dispatch(ctx context.Context, r models.TaskReminder) ([]models.Channel, error)
}

// EmailSettings configures reminder emails.
type EmailSettings struct {
	SubjectPrefix string
	AppBaseURL    string
}

// NotificationDispatcher fans a reminder out to the browser and email channels.
// A failure on any channel fails the whole dispatch. The browser record is keyed by
// reminder and written at most once.
type NotificationDispatcher struct {
	notifications repository.BrowserNotificationStore
	users         repository.UserReader
	sender        email.Sender
	settings      EmailSettings
	now           Clock
}

// NewNotificationDispatcher creates a new instance of NotificationDispatcher.
func NewNotificationDispatcher(notifications repository.BrowserNotificationStore, users repository.UserReader, sender email.Sender, settings EmailSettings, clock Clock) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifications: notifications,
		users:         users,
		sender:        sender,
		settings:      settings,
		now:           clockOrDefault(clock),
	}
}

// Dispatch implements Dispatcher.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, r models.TaskReminder) ([]models.Channel, error) {
	var (
		delivered []models.Channel
		errs      []error
	)
	for _, ch := range r.Channels {
		var err error
		switch ch {
		case models.ChannelBrowser:
			err = d.sendBrowser(ctx, r)
		case models.ChannelEmail:
			err = d.sendEmail(ctx, r)
		default:
			err = fmt.Errorf("unsupported channel %q", ch)
		}

		status := "success"
		if err == nil {
			delivered = append(delivered, ch)
		} else {
			status = "failure"
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"reminder_id": r.ID,
				"channel":     ch,
			}).Warn("Channel delivery failed")
		}
		metrics.ChannelDeliveries.WithLabelValues(string(ch), status).Inc()
	}
	return delivered, errors.Join(errs...)
}

func (d *NotificationDispatcher) sendBrowser(ctx context.Context, r models.TaskReminder) error {
	return d.notifications.CreateIfAbsent(ctx, &models.BrowserNotification{
		ID:          models.BrowserNotificationID(r.ID),
		UserID:      r.UserID,
		Type:        models.BrowserNotificationType,
		Title:       r.Title,
		Message:     r.Message,
		TaskID:      r.TaskID,
		TaskName:    r.TaskName,
		ProjectName: r.ProjectName,
		Priority:    r.Priority,
		CreatedAt:   d.now(),
	})
}

func (d *NotificationDispatcher) sendEmail(ctx context.Context, r models.TaskReminder) error {
	user, err := d.users.GetUser(ctx, r.UserID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	if user.Email == "" {
		return fmt.Errorf("user %s has no email address", r.UserID)
	}

	body, err := RenderReminderEmail(EmailContent{
		UserName:    user.DisplayName(),
		Title:       r.Title,
		Message:     r.Message,
		TaskName:    r.TaskName,
		ProjectName: r.ProjectName,
		Priority:    r.Priority,
		ActionURL:   TaskActionURL(d.settings.AppBaseURL, r.TaskID),
	})
	if err != nil {
		return err
	}

	subject := r.Title
	if d.settings.SubjectPrefix != "" {
		subject = d.settings.SubjectPrefix + ": " + r.Title
	}
	return d.sender.Send(ctx, user.Email, subject, body)
}
