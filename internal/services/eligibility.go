package services

import (
	"time"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ShouldSend decides whether a due reminder may be delivered now and on which channels.
// It does not modify the reminder; the returned slice is the reminder's channels minus
// those the user switched off. ok is false when the type is disabled, quiet hours are
// in effect, or no channel remains.
func ShouldSend(r *models.TaskReminder, pref *models.NotificationPreference, now time.Time, mode QuietHoursMode) (channels []models.Channel, ok bool) {
	if !pref.TypeEnabled(r.NotificationType) {
		return nil, false
	}

	if InQuietHours(pref, now, mode) {
		logger.Log.WithFields(logrus.Fields{
			"reminder_id": r.ID,
			"user_id":     r.UserID,
		}).Debug("Skipping notification during quiet hours")
		return nil, false
	}

	for _, ch := range r.Channels {
		if pref.ChannelEnabled(ch) {
			channels = append(channels, ch)
		}
	}
	return channels, len(channels) > 0
}
