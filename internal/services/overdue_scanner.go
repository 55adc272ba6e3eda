package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/sirupsen/logrus"
)

// OverdueDedupeWindow is how long after an overdue reminder was sent the same task stays quiet.
const OverdueDedupeWindow = time.Hour

// OverdueScanner creates overdue reminders for incomplete tasks past their due date.
type OverdueScanner struct {
	tasks     repository.TaskReader
	reminders repository.ReminderStore
	scheduler *ReminderScheduler
	limit     int64
}

// NewOverdueScanner creates a new instance of OverdueScanner. limit is the page size for
// reading overdue tasks; 0 reads them all at once.
func NewOverdueScanner(tasks repository.TaskReader, reminders repository.ReminderStore, scheduler *ReminderScheduler, limit int64) *OverdueScanner {
	return &OverdueScanner{
		tasks:     tasks,
		reminders: reminders,
		scheduler: scheduler,
		limit:     limit,
	}
}

// ScanOverdue creates at most one overdue reminder per overdue task and returns how many were created.
// Errors on individual tasks are logged and skipped.
func (s *OverdueScanner) ScanOverdue(ctx context.Context, now time.Time) (int, error) {
	created := 0
	var cursor *repository.PageCursor
	for {
		tasks, err := s.tasks.ListOverdue(ctx, repository.OverdueQuery{
			Now:   now,
			Limit: s.limit,
			After: cursor,
		})
		if err != nil {
			return created, fmt.Errorf("failed to fetch overdue tasks: %w", err)
		}

		for _, task := range tasks {
			if err := ctx.Err(); err != nil {
				return created, err
			}

			ok, err := s.scanTask(ctx, task, now)
			if err != nil {
				logger.Log.WithError(err).WithField("task_id", task.ID).Error("Error processing overdue task")
				continue
			}
			if ok {
				created++
			}
		}

		if s.limit <= 0 || int64(len(tasks)) < s.limit {
			break
		}
		last := tasks[len(tasks)-1]
		cursor = &repository.PageCursor{At: *last.DueDate, ID: last.ID}
	}

	if created > 0 {
		logger.Log.WithField("count", created).Info("Overdue reminders created")
	}
	return created, nil
}

func (s *OverdueScanner) scanTask(ctx context.Context, task models.TaskSnapshot, now time.Time) (bool, error) {
	active, err := s.reminders.HasActiveOverdue(ctx, task.ID, now.Add(-OverdueDedupeWindow))
	if err != nil {
		return false, err
	}
	if active {
		return false, nil
	}

	projectName := ""
	if task.ProjectID != "" {
		project, err := s.tasks.GetProject(ctx, task.ProjectID)
		switch {
		case err == nil:
			projectName = project.Name
		case errors.Is(err, apperrors.ErrNotFound):
		default:
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"task_id":    task.ID,
				"project_id": task.ProjectID,
			}).Warn("Could not load project for overdue reminder")
		}
	}

	message := fmt.Sprintf("Your task '%s' is overdue. Please review and update it.", task.Name)
	if projectName != "" {
		message += fmt.Sprintf(" (Project: %s)", projectName)
	}

	_, err = s.scheduler.ScheduleReminder(ctx, ReminderSpec{
		UserID:        task.UserID,
		TaskID:        task.ID,
		Type:          models.NotificationTaskOverdue,
		ScheduledTime: now,
		Title:         "Overdue Task: " + task.Name,
		Message:       message,
		Channels:      []models.Channel{models.ChannelBrowser, models.ChannelEmail},
		TaskName:      task.Name,
		ProjectName:   projectName,
		Priority:      task.Priority,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
