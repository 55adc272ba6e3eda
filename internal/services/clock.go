package services

import "time"

// Clock returns the current time. Services take one so sweeps and tests can pin "now".
type Clock func() time.Time

// SystemClock reports wall-clock time in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}
