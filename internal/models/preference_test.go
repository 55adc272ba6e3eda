package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNotificationPreference(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p := DefaultNotificationPreference("u1", now)

	assert.Equal(t, "u1", p.UserID)
	assert.True(t, p.EmailNotifications)
	assert.True(t, p.BrowserNotifications)
	assert.True(t, p.TaskDueNotifications)
	assert.True(t, p.TaskOverdueNotifications)
	assert.True(t, p.TaskReminderNotifications)
	assert.True(t, p.ProjectDeadlineNotifications)
	assert.True(t, p.RecurringTaskNotifications)
	assert.Equal(t, 30, p.ReminderAdvanceTime)
	assert.Nil(t, p.QuietHoursStart)
	assert.Nil(t, p.QuietHoursEnd)
	assert.Equal(t, now, p.CreatedAt)
}

func TestTypeEnabled(t *testing.T) {
	p := DefaultNotificationPreference("u1", time.Now())
	p.TaskDueNotifications = false

	assert.False(t, p.TypeEnabled(NotificationTaskDue))
	assert.True(t, p.TypeEnabled(NotificationTaskOverdue))
	assert.True(t, p.TypeEnabled(NotificationType("something_new")))
}

func TestChannelEnabled(t *testing.T) {
	p := DefaultNotificationPreference("u1", time.Now())
	p.EmailNotifications = false

	assert.True(t, p.ChannelEnabled(ChannelBrowser))
	assert.False(t, p.ChannelEnabled(ChannelEmail))
	assert.False(t, p.ChannelEnabled(Channel("sms")))
}

func TestNotificationPreferenceUpdate_Apply(t *testing.T) {
	p := DefaultNotificationPreference("u1", time.Now())
	off := false
	advance := 60
	start, end := "22:00", "07:00"

	NotificationPreferenceUpdate{
		EmailNotifications:  &off,
		ReminderAdvanceTime: &advance,
		QuietHoursStart:     &start,
		QuietHoursEnd:       &end,
	}.Apply(p)

	assert.False(t, p.EmailNotifications)
	assert.True(t, p.BrowserNotifications, "unset fields are left alone")
	assert.Equal(t, 60, p.ReminderAdvanceTime)
	require.NotNil(t, p.QuietHoursStart)
	assert.Equal(t, "22:00", *p.QuietHoursStart)

	empty := ""
	NotificationPreferenceUpdate{QuietHoursStart: &empty}.Apply(p)
	assert.Nil(t, p.QuietHoursStart)
	require.NotNil(t, p.QuietHoursEnd)
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ann Lee", (&User{FirstName: "Ann", LastName: "Lee", Username: "ann"}).DisplayName())
	assert.Equal(t, "Ann", (&User{FirstName: "Ann"}).DisplayName())
	assert.Equal(t, "ann", (&User{Username: "ann"}).DisplayName())
	assert.Equal(t, "User", (&User{}).DisplayName())
}
