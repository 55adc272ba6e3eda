package repository

import (
	"context"
	"time"

	"github.com/Dias221467/task-reminders/internal/models"
)

// PreferenceStore persists one NotificationPreference per user.
type PreferenceStore interface {
	FindByUser(ctx context.Context, userID string) (*models.NotificationPreference, error)
	Insert(ctx context.Context, pref *models.NotificationPreference) error
	Replace(ctx context.Context, pref *models.NotificationPreference) error
}

// PageCursor resumes a time-ordered scan strictly after the last row of the previous page.
// Rows are ordered by (At, ID).
type PageCursor struct {
	At time.Time
	ID string
}

// DueQuery selects reminders ready for dispatch, ordered by (scheduled_time, _id).
type DueQuery struct {
	Now time.Time
	// Claims taken before this instant are considered abandoned by their sweep and may be retaken.
	ClaimExpiredBefore time.Time
	Limit              int64
	After              *PageCursor
}

// OverdueQuery selects incomplete tasks due before Now, ordered by (due_date, _id).
type OverdueQuery struct {
	Now   time.Time
	Limit int64
	After *PageCursor
}

// ReminderStore persists TaskReminder documents. Status-changing writes are conditional
// on the current status and return apperrors.ErrInvalidTransition when the condition fails.
type ReminderStore interface {
	Insert(ctx context.Context, r *models.TaskReminder) error
	FindByID(ctx context.Context, id string) (*models.TaskReminder, error)
	FindDue(ctx context.Context, q DueQuery) ([]models.TaskReminder, error)
	FindByTask(ctx context.Context, userID, taskID string) ([]models.TaskReminder, error)
	// HasActiveOverdue reports whether taskID has an overdue reminder sent at or after
	// sentSince, or one that is still waiting to be delivered.
	HasActiveOverdue(ctx context.Context, taskID string, sentSince time.Time) (bool, error)
	// Claim atomically moves a claimable reminder to claimed. It returns false when
	// another sweep already holds it or it is no longer unsent.
	Claim(ctx context.Context, id string, now, claimExpiredBefore time.Time) (bool, error)
	// RecordDelivered adds channels to a claimed reminder's delivered set so a retry skips them.
	RecordDelivered(ctx context.Context, id string, channels []models.Channel, now time.Time) error
	MarkSent(ctx context.Context, id string, now time.Time) error
	ScheduleRetry(ctx context.Context, id string, retryCount int, nextRetry time.Time, lastErr string, now time.Time) error
	Abandon(ctx context.Context, id string, lastErr string, now time.Time) error
}

// BrowserNotificationStore persists in-app notifications.
type BrowserNotificationStore interface {
	// CreateIfAbsent stores n unless a notification with its ID already exists,
	// in which case the stored one is left untouched.
	CreateIfAbsent(ctx context.Context, n *models.BrowserNotification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.BrowserNotification, error)
	MarkRead(ctx context.Context, userID, id string, now time.Time) error
	MarkClicked(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string, now time.Time) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// TaskReader reads tasks and projects owned by the task service.
type TaskReader interface {
	GetTask(ctx context.Context, taskID string) (*models.TaskSnapshot, error)
	GetProject(ctx context.Context, projectID string) (*models.ProjectSnapshot, error)
	ListOverdue(ctx context.Context, q OverdueQuery) ([]models.TaskSnapshot, error)
}

// UserReader reads user accounts.
type UserReader interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

var (
	_ PreferenceStore          = (*PreferenceRepository)(nil)
	_ ReminderStore            = (*ReminderRepository)(nil)
	_ BrowserNotificationStore = (*NotificationRepository)(nil)
	_ TaskReader               = (*TaskRepository)(nil)
	_ UserReader               = (*UserRepository)(nil)
)
