package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 1, hour, min, 0, 0, time.UTC)
}

func quietPref(start, end string) *models.NotificationPreference {
	p := models.DefaultNotificationPreference("u1", baseTime)
	p.QuietHoursStart = strPtr(start)
	p.QuietHoursEnd = strPtr(end)
	return p
}

func TestInQuietHours_Interval(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		now        time.Time
		want       bool
	}{
		{"overnight inside late", "22:00", "07:00", at(23, 30), true},
		{"overnight inside early", "22:00", "07:00", at(3, 0), true},
		{"overnight at start", "22:00", "07:00", at(22, 0), true},
		{"overnight at end", "22:00", "07:00", at(7, 0), false},
		{"overnight outside", "22:00", "07:00", at(12, 0), false},
		{"daytime inside", "09:00", "17:00", at(12, 0), true},
		{"daytime outside", "09:00", "17:00", at(20, 0), false},
		{"equal bounds", "09:00", "09:00", at(9, 0), false},
		{"single digit hour", "9:00", "17:00", at(9, 30), true},
		{"malformed", "late", "07:00", at(23, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InQuietHours(quietPref(tt.start, tt.end), tt.now, QuietHoursInterval))
		})
	}
}

func TestInQuietHours_Legacy(t *testing.T) {
	// The historical test suppresses any time after start, even outside a daytime window.
	assert.True(t, InQuietHours(quietPref("09:00", "17:00"), at(20, 0), QuietHoursLegacy))
	assert.True(t, InQuietHours(quietPref("22:00", "07:00"), at(23, 0), QuietHoursLegacy))
	assert.False(t, InQuietHours(quietPref("22:00", "07:00"), at(12, 0), QuietHoursLegacy))
}

func TestInQuietHours_LegacyOneDigitHour(t *testing.T) {
	assert.False(t, InQuietHours(quietPref("22:00", "7:00"), at(12, 0), QuietHoursLegacy))
	assert.True(t, InQuietHours(quietPref("9:00", "10:00"), at(20, 0), QuietHoursLegacy))
}

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "09:00", normalizeClock("9:00"))
	assert.Equal(t, "22:30", normalizeClock(" 22:30"))
	assert.Equal(t, "nonsense", normalizeClock("nonsense"))
}

func TestInQuietHours_RequiresBothBounds(t *testing.T) {
	p := models.DefaultNotificationPreference("u1", baseTime)
	p.QuietHoursStart = strPtr("00:00")
	assert.False(t, InQuietHours(p, at(12, 0), QuietHoursInterval))
	assert.False(t, InQuietHours(p, at(12, 0), QuietHoursLegacy))
}

func TestInQuietHours_UsesTimezone(t *testing.T) {
	p := quietPref("22:00", "07:00")
	now := at(11, 30) // 06:30 in New York

	assert.False(t, InQuietHours(p, now, QuietHoursInterval))

	p.Timezone = "America/New_York"
	assert.True(t, InQuietHours(p, now, QuietHoursInterval))

	p.Timezone = "Not/AZone"
	assert.False(t, InQuietHours(p, now, QuietHoursInterval), "unknown zones fall back to UTC")
}

func TestParseClock(t *testing.T) {
	m, ok := parseClock("07:05")
	assert.True(t, ok)
	assert.Equal(t, 425, m)

	for _, bad := range []string{"", "7", "24:00", "12:60", "12:5", "ab:cd", "123:00"} {
		_, ok := parseClock(bad)
		assert.False(t, ok, bad)
	}
}
