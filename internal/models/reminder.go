package models

import (
	"fmt"
	"time"
)

// NotificationType is the trigger condition a reminder was created for.
type NotificationType string

const (
	NotificationTaskDue         NotificationType = "task_due"
	NotificationTaskOverdue     NotificationType = "task_overdue"
	NotificationTaskReminder    NotificationType = "task_reminder"
	NotificationProjectDeadline NotificationType = "project_deadline"
	NotificationRecurringTask   NotificationType = "recurring_task"
)

// Channel is a delivery mechanism.
type Channel string

const (
	ChannelBrowser Channel = "browser"
	ChannelEmail   Channel = "email"
)

// DefaultMaxRetries is the retry budget given to every reminder.
const DefaultMaxRetries = 3

// ReminderStatus tracks a reminder through dispatch.
type ReminderStatus string

const (
	StatusPending        ReminderStatus = "pending"
	StatusClaimed        ReminderStatus = "claimed"
	StatusSent           ReminderStatus = "sent"
	StatusRetryScheduled ReminderStatus = "retry_scheduled"
	StatusAbandoned      ReminderStatus = "abandoned"
)

var reminderTransitions = map[ReminderStatus][]ReminderStatus{
	StatusPending:        {StatusClaimed},
	StatusRetryScheduled: {StatusClaimed},
	// claimed -> claimed happens when an expired claim is taken over
	StatusClaimed:   {StatusClaimed, StatusSent, StatusRetryScheduled, StatusAbandoned},
	StatusSent:      nil,
	StatusAbandoned: nil,
}

// CanTransition reports whether a reminder may move from s to next.
func (s ReminderStatus) CanTransition(next ReminderStatus) bool {
	for _, allowed := range reminderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further automated action happens in s.
func (s ReminderStatus) Terminal() bool {
	return s == StatusSent || s == StatusAbandoned
}

// TaskReminder is one scheduled notification instance for a task.
//
// TaskName, ProjectName and Priority are captured when the reminder is scheduled
// and are never re-read from the task at dispatch time.
type TaskReminder struct {
	ID               string           `bson:"_id" json:"id"`
	UserID           string           `bson:"user_id" json:"user_id"`
	TaskID           string           `bson:"task_id" json:"task_id"`
	NotificationType NotificationType `bson:"notification_type" json:"notification_type"`
	ScheduledTime    time.Time        `bson:"scheduled_time" json:"scheduled_time"`
	Title            string           `bson:"title" json:"title"`
	Message          string           `bson:"message" json:"message"`
	Channels         []Channel        `bson:"channels" json:"channels"`
	// DeliveredChannels are channels that already succeeded on an earlier attempt.
	DeliveredChannels []Channel `bson:"delivered_channels,omitempty" json:"delivered_channels,omitempty"`

	TaskName    string `bson:"task_name,omitempty" json:"task_name,omitempty"`
	ProjectName string `bson:"project_name,omitempty" json:"project_name,omitempty"`
	Priority    string `bson:"priority,omitempty" json:"priority,omitempty"`

	Status     ReminderStatus `bson:"status" json:"status"`
	IsSent     bool           `bson:"is_sent" json:"is_sent"`
	SentAt     *time.Time     `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	ClaimedAt  *time.Time     `bson:"claimed_at,omitempty" json:"claimed_at,omitempty"`
	RetryCount int            `bson:"retry_count" json:"retry_count"`
	MaxRetries int            `bson:"max_retries" json:"max_retries"`
	NextRetry  *time.Time     `bson:"next_retry,omitempty" json:"next_retry,omitempty"`
	LastError  string         `bson:"last_error,omitempty" json:"last_error,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ReminderID derives a reminder ID from the task and the scheduled instant, so
// scheduling the same task for the same second twice collides instead of duplicating.
func ReminderID(taskID string, scheduled time.Time) string {
	return fmt.Sprintf("reminder_%s_%d", taskID, scheduled.Unix())
}

// HasChannel reports whether c is among the reminder's channels.
func (r *TaskReminder) HasChannel(c Channel) bool {
	for _, ch := range r.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// Undelivered returns the channels of want not yet in DeliveredChannels.
func (r *TaskReminder) Undelivered(want []Channel) []Channel {
	var out []Channel
	for _, c := range want {
		delivered := false
		for _, d := range r.DeliveredChannels {
			if d == c {
				delivered = true
				break
			}
		}
		if !delivered {
			out = append(out, c)
		}
	}
	return out
}

// ClaimableStatuses are the statuses from which a sweep may claim a reminder.
var ClaimableStatuses = []ReminderStatus{StatusPending, StatusRetryScheduled}
