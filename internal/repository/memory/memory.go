// Package memory holds map-backed implementations of the repository ports.
// They mirror the Mongo filters closely enough for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository"
)

var (
	_ repository.PreferenceStore          = (*PreferenceStore)(nil)
	_ repository.ReminderStore            = (*ReminderStore)(nil)
	_ repository.BrowserNotificationStore = (*NotificationStore)(nil)
	_ repository.TaskReader               = (*TaskStore)(nil)
	_ repository.UserReader               = (*UserStore)(nil)
)

type PreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]models.NotificationPreference
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{prefs: make(map[string]models.NotificationPreference)}
}

func (s *PreferenceStore) FindByUser(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[userID]
	if !ok {
		return nil, fmt.Errorf("find preferences: %w", apperrors.ErrNotFound)
	}
	return &p, nil
}

func (s *PreferenceStore) Insert(ctx context.Context, pref *models.NotificationPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prefs[pref.UserID]; ok {
		return fmt.Errorf("insert preferences: %w", apperrors.ErrConflict)
	}
	s.prefs[pref.UserID] = *pref
	return nil
}

func (s *PreferenceStore) Replace(ctx context.Context, pref *models.NotificationPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prefs[pref.UserID]; !ok {
		return fmt.Errorf("replace preferences: %w", apperrors.ErrNotFound)
	}
	s.prefs[pref.UserID] = *pref
	return nil
}

type ReminderStore struct {
	mu        sync.RWMutex
	reminders map[string]models.TaskReminder
}

func NewReminderStore() *ReminderStore {
	return &ReminderStore{reminders: make(map[string]models.TaskReminder)}
}

func (s *ReminderStore) Insert(ctx context.Context, r *models.TaskReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[r.ID]; ok {
		return fmt.Errorf("insert reminder: %w", apperrors.ErrConflict)
	}
	s.reminders[r.ID] = cloneReminder(*r)
	return nil
}

func (s *ReminderStore) FindByID(ctx context.Context, id string) (*models.TaskReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reminders[id]
	if !ok {
		return nil, fmt.Errorf("find reminder: %w", apperrors.ErrNotFound)
	}
	r = cloneReminder(r)
	return &r, nil
}

func (s *ReminderStore) FindDue(ctx context.Context, q repository.DueQuery) ([]models.TaskReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.TaskReminder
	for _, r := range s.reminders {
		if r.IsSent || r.ScheduledTime.After(q.Now) {
			continue
		}
		if !claimable(r, q.ClaimExpiredBefore) {
			continue
		}
		if r.NextRetry != nil && r.NextRetry.After(q.Now) {
			continue
		}
		if !after(r.ScheduledTime, r.ID, q.After) {
			continue
		}
		out = append(out, cloneReminder(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].ScheduledTime, out[i].ID, out[j].ScheduledTime, out[j].ID)
	})
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *ReminderStore) FindByTask(ctx context.Context, userID, taskID string) ([]models.TaskReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.TaskReminder{}
	for _, r := range s.reminders {
		if r.UserID == userID && r.TaskID == taskID {
			out = append(out, cloneReminder(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	return out, nil
}

func (s *ReminderStore) HasActiveOverdue(ctx context.Context, taskID string, sentSince time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reminders {
		if r.TaskID != taskID || r.NotificationType != models.NotificationTaskOverdue {
			continue
		}
		if r.SentAt != nil && !r.SentAt.Before(sentSince) {
			return true, nil
		}
		if !r.IsSent && !r.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (s *ReminderStore) Claim(ctx context.Context, id string, now, claimExpiredBefore time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.IsSent || !claimable(r, claimExpiredBefore) {
		return false, nil
	}
	r.Status = models.StatusClaimed
	r.ClaimedAt = &now
	r.UpdatedAt = now
	s.reminders[id] = r
	return true, nil
}

func (s *ReminderStore) RecordDelivered(ctx context.Context, id string, channels []models.Channel, now time.Time) error {
	if len(channels) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.Status != models.StatusClaimed {
		return fmt.Errorf("reminder %s record delivered: %w", id, apperrors.ErrInvalidTransition)
	}
	r.DeliveredChannels = append(r.DeliveredChannels, r.Undelivered(channels)...)
	r.UpdatedAt = now
	s.reminders[id] = r
	return nil
}

func (s *ReminderStore) MarkSent(ctx context.Context, id string, now time.Time) error {
	return s.transition(id, models.StatusSent, now, func(r *models.TaskReminder) {
		r.IsSent = true
		r.SentAt = &now
		r.NextRetry = nil
	})
}

func (s *ReminderStore) ScheduleRetry(ctx context.Context, id string, retryCount int, nextRetry time.Time, lastErr string, now time.Time) error {
	return s.transition(id, models.StatusRetryScheduled, now, func(r *models.TaskReminder) {
		r.RetryCount = retryCount
		r.NextRetry = &nextRetry
		r.LastError = lastErr
		r.ClaimedAt = nil
	})
}

func (s *ReminderStore) Abandon(ctx context.Context, id string, lastErr string, now time.Time) error {
	return s.transition(id, models.StatusAbandoned, now, func(r *models.TaskReminder) {
		r.LastError = lastErr
		r.NextRetry = nil
	})
}

// All returns every stored reminder. Test helper.
func (s *ReminderStore) All() []models.TaskReminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TaskReminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, cloneReminder(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	return out
}

func (s *ReminderStore) transition(id string, to models.ReminderStatus, now time.Time, apply func(*models.TaskReminder)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.Status != models.StatusClaimed {
		return fmt.Errorf("reminder %s to %s: %w", id, to, apperrors.ErrInvalidTransition)
	}
	apply(&r)
	r.Status = to
	r.UpdatedAt = now
	s.reminders[id] = r
	return nil
}

func claimable(r models.TaskReminder, claimExpiredBefore time.Time) bool {
	switch r.Status {
	case models.StatusPending, models.StatusRetryScheduled:
		return true
	case models.StatusClaimed:
		return r.ClaimedAt != nil && r.ClaimedAt.Before(claimExpiredBefore)
	default:
		return false
	}
}

func cloneReminder(r models.TaskReminder) models.TaskReminder {
	r.Channels = append([]models.Channel(nil), r.Channels...)
	r.DeliveredChannels = append([]models.Channel(nil), r.DeliveredChannels...)
	return r
}

// before orders rows by (at, id), matching the Mongo sort.
func before(at time.Time, id string, otherAt time.Time, otherID string) bool {
	if !at.Equal(otherAt) {
		return at.Before(otherAt)
	}
	return id < otherID
}

func after(at time.Time, id string, c *repository.PageCursor) bool {
	return c == nil || before(c.At, c.ID, at, id)
}

type NotificationStore struct {
	mu            sync.RWMutex
	notifications map[string]models.BrowserNotification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{notifications: make(map[string]models.BrowserNotification)}
}

func (s *NotificationStore) CreateIfAbsent(ctx context.Context, n *models.BrowserNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[n.ID]; !ok {
		s.notifications[n.ID] = *n
	}
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.BrowserNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.BrowserNotification{}
	for _, n := range s.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID, id string, now time.Time) error {
	return s.update(userID, id, func(n *models.BrowserNotification) {
		n.Read = true
		n.ReadAt = &now
	})
}

func (s *NotificationStore) MarkClicked(ctx context.Context, userID, id string) error {
	return s.update(userID, id, func(n *models.BrowserNotification) { n.Clicked = true })
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &now
			s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("delete notification %s: %w", id, apperrors.ErrNotFound)
	}
	delete(s.notifications, id)
	return nil
}

func (s *NotificationStore) DeleteAll(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, n := range s.notifications {
		if n.UserID == userID {
			delete(s.notifications, id)
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) update(userID, id string, apply func(*models.BrowserNotification)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification %s: %w", id, apperrors.ErrNotFound)
	}
	apply(&n)
	s.notifications[id] = n
	return nil
}

// TaskStore is a seedable TaskReader.
type TaskStore struct {
	mu       sync.RWMutex
	tasks    map[string]models.TaskSnapshot
	projects map[string]models.ProjectSnapshot
}

func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks:    make(map[string]models.TaskSnapshot),
		projects: make(map[string]models.ProjectSnapshot),
	}
}

func (s *TaskStore) PutTask(t models.TaskSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

func (s *TaskStore) PutProject(p models.ProjectSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
}

func (s *TaskStore) GetTask(ctx context.Context, taskID string) (*models.TaskSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("find task: %w", apperrors.ErrNotFound)
	}
	return &t, nil
}

func (s *TaskStore) GetProject(ctx context.Context, projectID string) (*models.ProjectSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("find project: %w", apperrors.ErrNotFound)
	}
	return &p, nil
}

func (s *TaskStore) ListOverdue(ctx context.Context, q repository.OverdueQuery) ([]models.TaskSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.TaskSnapshot
	for _, t := range s.tasks {
		if t.Completed || t.DueDate == nil || !t.DueDate.Before(q.Now) {
			continue
		}
		if after(*t.DueDate, t.ID, q.After) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return before(*out[i].DueDate, out[i].ID, *out[j].DueDate, out[j].ID)
	})
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// UserStore is a seedable UserReader.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User)}
}

func (s *UserStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *UserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("find user: %w", apperrors.ErrNotFound)
	}
	return &u, nil
}
