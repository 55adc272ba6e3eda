package models

import "time"

// Default preference values applied when a user has never saved preferences.
const (
	DefaultReminderAdvanceMinutes = 30
)

// NotificationPreference holds one user's notification settings. There is at most one per user.
type NotificationPreference struct {
	ID     string `bson:"_id" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`

	EmailNotifications   bool `bson:"email_notifications" json:"email_notifications"`
	BrowserNotifications bool `bson:"browser_notifications" json:"browser_notifications"`

	TaskDueNotifications         bool `bson:"task_due_notifications" json:"task_due_notifications"`
	TaskOverdueNotifications     bool `bson:"task_overdue_notifications" json:"task_overdue_notifications"`
	TaskReminderNotifications    bool `bson:"task_reminder_notifications" json:"task_reminder_notifications"`
	ProjectDeadlineNotifications bool `bson:"project_deadline_notifications" json:"project_deadline_notifications"`
	RecurringTaskNotifications   bool `bson:"recurring_task_notifications" json:"recurring_task_notifications"`

	// ReminderAdvanceTime is the number of minutes before the due time to fire the advance reminder.
	ReminderAdvanceTime int `bson:"reminder_advance_time" json:"reminder_advance_time"`

	QuietHoursStart *string `bson:"quiet_hours_start,omitempty" json:"quiet_hours_start"`
	QuietHoursEnd   *string `bson:"quiet_hours_end,omitempty" json:"quiet_hours_end"`
	// Timezone is an IANA zone name used to read quiet hours. Empty means UTC.
	Timezone string `bson:"timezone,omitempty" json:"timezone,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultNotificationPreference returns the compiled-in defaults for a user.
func DefaultNotificationPreference(userID string, now time.Time) *NotificationPreference {
	return &NotificationPreference{
		UserID:                       userID,
		EmailNotifications:           true,
		BrowserNotifications:         true,
		TaskDueNotifications:         true,
		TaskOverdueNotifications:     true,
		TaskReminderNotifications:    true,
		ProjectDeadlineNotifications: true,
		RecurringTaskNotifications:   true,
		ReminderAdvanceTime:          DefaultReminderAdvanceMinutes,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
}

// TypeEnabled reports whether the per-type toggle for t is on. Unknown types are allowed.
func (p *NotificationPreference) TypeEnabled(t NotificationType) bool {
	switch t {
	case NotificationTaskDue:
		return p.TaskDueNotifications
	case NotificationTaskOverdue:
		return p.TaskOverdueNotifications
	case NotificationTaskReminder:
		return p.TaskReminderNotifications
	case NotificationProjectDeadline:
		return p.ProjectDeadlineNotifications
	case NotificationRecurringTask:
		return p.RecurringTaskNotifications
	default:
		return true
	}
}

// ChannelEnabled reports whether the user accepts deliveries on c.
func (p *NotificationPreference) ChannelEnabled(c Channel) bool {
	switch c {
	case ChannelBrowser:
		return p.BrowserNotifications
	case ChannelEmail:
		return p.EmailNotifications
	default:
		return false
	}
}

// NotificationPreferenceUpdate is a partial update. Nil fields are left unchanged.
type NotificationPreferenceUpdate struct {
	EmailNotifications           *bool   `json:"email_notifications,omitempty"`
	BrowserNotifications         *bool   `json:"browser_notifications,omitempty"`
	TaskDueNotifications         *bool   `json:"task_due_notifications,omitempty"`
	TaskOverdueNotifications     *bool   `json:"task_overdue_notifications,omitempty"`
	TaskReminderNotifications    *bool   `json:"task_reminder_notifications,omitempty"`
	ProjectDeadlineNotifications *bool   `json:"project_deadline_notifications,omitempty"`
	RecurringTaskNotifications   *bool   `json:"recurring_task_notifications,omitempty"`
	ReminderAdvanceTime          *int    `json:"reminder_advance_time,omitempty"`
	QuietHoursStart              *string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd                *string `json:"quiet_hours_end,omitempty"`
	Timezone                     *string `json:"timezone,omitempty"`
}

// Apply copies the set fields of u onto p. An empty quiet-hour string clears that bound.
func (u NotificationPreferenceUpdate) Apply(p *NotificationPreference) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&p.EmailNotifications, u.EmailNotifications)
	setBool(&p.BrowserNotifications, u.BrowserNotifications)
	setBool(&p.TaskDueNotifications, u.TaskDueNotifications)
	setBool(&p.TaskOverdueNotifications, u.TaskOverdueNotifications)
	setBool(&p.TaskReminderNotifications, u.TaskReminderNotifications)
	setBool(&p.ProjectDeadlineNotifications, u.ProjectDeadlineNotifications)
	setBool(&p.RecurringTaskNotifications, u.RecurringTaskNotifications)

	if u.ReminderAdvanceTime != nil {
		p.ReminderAdvanceTime = *u.ReminderAdvanceTime
	}
	if u.QuietHoursStart != nil {
		p.QuietHoursStart = emptyToNil(*u.QuietHoursStart)
	}
	if u.QuietHoursEnd != nil {
		p.QuietHoursEnd = emptyToNil(*u.QuietHoursEnd)
	}
	if u.Timezone != nil {
		p.Timezone = *u.Timezone
	}
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
