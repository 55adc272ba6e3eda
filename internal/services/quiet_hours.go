package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/pkg/logger"
)

// QuietHoursMode selects how quiet-hour bounds are interpreted.
type QuietHoursMode string

const (
	// QuietHoursInterval suppresses inside [start, end), wrapping past midnight when start > end.
	QuietHoursInterval QuietHoursMode = "interval"
	// QuietHoursLegacy reproduces the historical string test `start <= now || now <= end`,
	// which is true for most of the day whenever both bounds are set.
	QuietHoursLegacy QuietHoursMode = "legacy"
)

// parseClock parses "HH:MM" (hour may be one digit) into minutes after midnight.
func parseClock(s string) (int, bool) {
	hs, ms, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || len(ms) != 2 || hs == "" || len(hs) > 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// normalizeClock rewrites a parseable clock as zero-padded "HH:MM" and leaves anything else as is.
func normalizeClock(s string) string {
	m, ok := parseClock(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// InQuietHours reports whether now falls in the user's quiet hours. Both bounds must be set.
func InQuietHours(pref *models.NotificationPreference, now time.Time, mode QuietHoursMode) bool {
	if pref.QuietHoursStart == nil || pref.QuietHoursEnd == nil {
		return false
	}
	start, end := *pref.QuietHoursStart, *pref.QuietHoursEnd
	local := now.In(preferenceLocation(pref))

	if mode == QuietHoursLegacy {
		current := local.Format("15:04")
		start, end = normalizeClock(start), normalizeClock(end)
		return start <= current || current <= end
	}

	s, okStart := parseClock(start)
	e, okEnd := parseClock(end)
	if !okStart || !okEnd {
		logger.Log.WithField("user_id", pref.UserID).Warn("Ignoring malformed quiet hours")
		return false
	}
	cur := local.Hour()*60 + local.Minute()
	switch {
	case s < e:
		return cur >= s && cur < e
	case s > e:
		return cur >= s || cur < e
	default:
		return false
	}
}

func preferenceLocation(pref *models.NotificationPreference) *time.Location {
	if pref.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(pref.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
