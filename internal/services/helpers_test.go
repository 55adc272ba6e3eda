package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// movableClock is a Clock tests can advance between calls.
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type sentEmail struct {
	To, Subject, Body string
}

// recordingSender records emails and fails while err is set.
type recordingSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (s *recordingSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (s *recordingSender) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *recordingSender) Sent() []sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentEmail(nil), s.sent...)
}

// countingDispatcher records every dispatch and fails every channel while err is set.
type countingDispatcher struct {
	mu    sync.Mutex
	calls []models.TaskReminder
	err   error
}

func (d *countingDispatcher) Dispatch(ctx context.Context, r models.TaskReminder) ([]models.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, r)
	if d.err != nil {
		return nil, d.err
	}
	return r.Channels, nil
}

func (d *countingDispatcher) Calls() []models.TaskReminder {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.TaskReminder(nil), d.calls...)
}

func putPreferences(t *testing.T, store *memory.PreferenceStore, pref *models.NotificationPreference) {
	t.Helper()
	if pref.ID == "" {
		pref.ID = "pref_" + pref.UserID
	}
	require.NoError(t, store.Insert(context.Background(), pref))
}

func strPtr(s string) *string { return &s }
