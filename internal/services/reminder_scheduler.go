package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/metrics"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ScheduleRequest describes a task whose reminders should be scheduled.
type ScheduleRequest struct {
	UserID      string
	TaskID      string
	TaskName    string
	DueDate     time.Time
	DueTime     string // optional "HH:MM"
	ProjectName string
}

// ReminderSpec is a single reminder to persist.
type ReminderSpec struct {
	UserID        string
	TaskID        string
	Type          models.NotificationType
	ScheduledTime time.Time
	Title         string
	Message       string
	Channels      []models.Channel
	TaskName      string
	ProjectName   string
	Priority      string
}

// ReminderScheduler turns a task's due date and the user's preferences into reminder records.
type ReminderScheduler struct {
	reminders   repository.ReminderStore
	tasks       repository.TaskReader
	preferences *PreferenceService
	now         Clock
}

// NewReminderScheduler creates a new instance of ReminderScheduler.
func NewReminderScheduler(reminders repository.ReminderStore, tasks repository.TaskReader, preferences *PreferenceService, clock Clock) *ReminderScheduler {
	return &ReminderScheduler{
		reminders:   reminders,
		tasks:       tasks,
		preferences: preferences,
		now:         clockOrDefault(clock),
	}
}

// Schedule creates the advance and due-now reminders the user's preferences call for
// and returns their IDs. Store failures are returned to the caller.
func (s *ReminderScheduler) Schedule(ctx context.Context, req ScheduleRequest) ([]string, error) {
	prefs, err := s.preferences.GetOrCreateDefaults(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	dueAt := req.DueDate
	if req.DueTime != "" {
		if combined, ok := combineDueTime(req.DueDate, req.DueTime); ok {
			dueAt = combined
		} else {
			logger.Log.WithFields(logrus.Fields{
				"task_id":  req.TaskID,
				"due_time": req.DueTime,
			}).Warn("Invalid due time, scheduling against the due date alone")
		}
	}

	snap, err := s.snapshot(ctx, req)
	if err != nil {
		return nil, err
	}

	projectSuffix := ""
	if snap.ProjectName != "" {
		projectSuffix = fmt.Sprintf(" (Project: %s)", snap.ProjectName)
	}

	var ids []string

	if prefs.TaskReminderNotifications && prefs.ReminderAdvanceTime > 0 {
		remindAt := dueAt.Add(-time.Duration(prefs.ReminderAdvanceTime) * time.Minute)
		if remindAt.After(s.now()) {
			channels := []models.Channel{models.ChannelBrowser}
			if prefs.EmailNotifications {
				channels = append(channels, models.ChannelEmail)
			}
			id, err := s.ScheduleReminder(ctx, ReminderSpec{
				UserID:        req.UserID,
				TaskID:        req.TaskID,
				Type:          models.NotificationTaskReminder,
				ScheduledTime: remindAt,
				Title:         "Task Due Soon: " + snap.TaskName,
				Message:       fmt.Sprintf("Your task '%s' is due in %d minutes.%s", snap.TaskName, prefs.ReminderAdvanceTime, projectSuffix),
				Channels:      channels,
				TaskName:      snap.TaskName,
				ProjectName:   snap.ProjectName,
				Priority:      snap.Priority,
			})
			if err != nil {
				return ids, err
			}
			ids = append(ids, id)
		}
	}

	// The due-now reminder is created even when dueAt has passed; the next sweep fires it.
	if prefs.TaskDueNotifications {
		id, err := s.ScheduleReminder(ctx, ReminderSpec{
			UserID:        req.UserID,
			TaskID:        req.TaskID,
			Type:          models.NotificationTaskDue,
			ScheduledTime: dueAt,
			Title:         "Task Due Now: " + snap.TaskName,
			Message:       fmt.Sprintf("Your task '%s' is due now.%s", snap.TaskName, projectSuffix),
			Channels:      []models.Channel{models.ChannelBrowser},
			TaskName:      snap.TaskName,
			ProjectName:   snap.ProjectName,
			Priority:      snap.Priority,
		})
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// ScheduleReminder persists one pending reminder. Scheduling the same task for the
// same second again returns the existing ID.
func (s *ReminderScheduler) ScheduleReminder(ctx context.Context, spec ReminderSpec) (string, error) {
	channels := spec.Channels
	if len(channels) == 0 {
		channels = []models.Channel{models.ChannelBrowser}
	}

	now := s.now()
	reminder := &models.TaskReminder{
		ID:               models.ReminderID(spec.TaskID, spec.ScheduledTime),
		UserID:           spec.UserID,
		TaskID:           spec.TaskID,
		NotificationType: spec.Type,
		ScheduledTime:    spec.ScheduledTime.UTC(),
		Title:            spec.Title,
		Message:          spec.Message,
		Channels:         channels,
		TaskName:         spec.TaskName,
		ProjectName:      spec.ProjectName,
		Priority:         spec.Priority,
		Status:           models.StatusPending,
		MaxRetries:       models.DefaultMaxRetries,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	fields := logrus.Fields{
		"reminder_id":       reminder.ID,
		"task_id":           spec.TaskID,
		"user_id":           spec.UserID,
		"notification_type": spec.Type,
	}

	if err := s.reminders.Insert(ctx, reminder); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Log.WithFields(fields).Info("Reminder already scheduled")
			return reminder.ID, nil
		}
		logger.Log.WithFields(fields).WithError(err).Error("Failed to schedule reminder")
		return "", fmt.Errorf("failed to schedule reminder: %w", err)
	}

	metrics.RemindersScheduled.WithLabelValues(string(spec.Type)).Inc()
	logger.Log.WithFields(fields).WithField("scheduled_time", reminder.ScheduledTime).Info("Scheduled reminder")
	return reminder.ID, nil
}

type taskSnapshot struct {
	TaskName    string
	ProjectName string
	Priority    string
}

// snapshot captures the denormalized task fields stored on each reminder.
// A missing task or project is tolerated; the request's own values are used.
func (s *ReminderScheduler) snapshot(ctx context.Context, req ScheduleRequest) (taskSnapshot, error) {
	snap := taskSnapshot{TaskName: req.TaskName, ProjectName: req.ProjectName}

	task, err := s.tasks.GetTask(ctx, req.TaskID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Log.WithField("task_id", req.TaskID).Warn("Task not found while scheduling reminders")
		return snap, nil
	case err != nil:
		return snap, fmt.Errorf("failed to load task: %w", err)
	}

	snap.Priority = task.Priority
	if snap.TaskName == "" {
		snap.TaskName = task.Name
	}
	if snap.ProjectName == "" && task.ProjectID != "" {
		project, err := s.tasks.GetProject(ctx, task.ProjectID)
		switch {
		case err == nil:
			snap.ProjectName = project.Name
		case !errors.Is(err, apperrors.ErrNotFound):
			return snap, fmt.Errorf("failed to load project: %w", err)
		}
	}
	return snap, nil
}

// combineDueTime sets the clock time "HH:MM" on dueDate's calendar date.
func combineDueTime(dueDate time.Time, dueTime string) (time.Time, bool) {
	hs, ms, found := strings.Cut(strings.TrimSpace(dueTime), ":")
	if !found {
		return dueDate, false
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return dueDate, false
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return dueDate, false
	}
	y, mo, d := dueDate.Date()
	return time.Date(y, mo, d, h, m, 0, 0, dueDate.Location()), true
}

// ListForTask returns every reminder recorded for the user's task, oldest scheduled first.
func (s *ReminderScheduler) ListForTask(ctx context.Context, userID, taskID string) ([]models.TaskReminder, error) {
	items, err := s.reminders.FindByTask(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	if items == nil {
		items = []models.TaskReminder{}
	}
	return items, nil
}
