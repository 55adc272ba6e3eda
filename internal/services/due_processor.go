package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Dias221467/task-reminders/internal/apperrors"
	"github.com/Dias221467/task-reminders/internal/metrics"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// finalWriteTimeout bounds the state write after a dispatch, which must land even
// when the reminder's own deadline has already passed.
const finalWriteTimeout = 5 * time.Second

// ProcessorConfig tunes a due-reminder sweep.
type ProcessorConfig struct {
	Workers         int
	ReminderTimeout time.Duration
	ClaimTTL        time.Duration
	BatchLimit      int64
	QuietHours      QuietHoursMode
}

// Outcome is what a sweep did with a single due reminder.
type Outcome string

const (
	OutcomeSent        Outcome = "sent"
	OutcomeRetry       Outcome = "retry_scheduled"
	OutcomeAbandoned   Outcome = "abandoned"
	OutcomeSuppressed  Outcome = "suppressed"
	OutcomeNoPrefs     Outcome = "no_preferences"
	OutcomeClaimLost   Outcome = "claim_lost"
	OutcomeStoreFailed Outcome = "error"
)

// DueReminderProcessor delivers every reminder whose scheduled time has passed.
type DueReminderProcessor struct {
	reminders   repository.ReminderStore
	preferences repository.PreferenceStore
	dispatcher  Dispatcher
	retries     *RetryCoordinator
	cfg         ProcessorConfig
}

// NewDueReminderProcessor creates a new instance of DueReminderProcessor.
func NewDueReminderProcessor(reminders repository.ReminderStore, preferences repository.PreferenceStore, dispatcher Dispatcher, retries *RetryCoordinator, cfg ProcessorConfig) *DueReminderProcessor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QuietHours == "" {
		cfg.QuietHours = QuietHoursInterval
	}
	return &DueReminderProcessor{
		reminders:   reminders,
		preferences: preferences,
		dispatcher:  dispatcher,
		retries:     retries,
		cfg:         cfg,
	}
}

// ProcessDue runs one sweep at now and returns how many reminders were delivered.
// Due reminders are read in pages of BatchLimit and the sweep keeps paging until the
// due set is exhausted or ctx is done, so rows that stay ineligible never hide newer ones.
// A failure on one reminder is logged and does not stop the others; only a failure
// to list due reminders is returned.
func (p *DueReminderProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	var (
		sent   int64
		total  int
		cursor *repository.PageCursor
	)
	for ctx.Err() == nil {
		due, err := p.reminders.FindDue(ctx, repository.DueQuery{
			Now:                now,
			ClaimExpiredBefore: now.Add(-p.cfg.ClaimTTL),
			Limit:              p.cfg.BatchLimit,
			After:              cursor,
		})
		if err != nil {
			return int(sent), fmt.Errorf("failed to load due reminders: %w", err)
		}
		if len(due) == 0 {
			break
		}

		total += len(due)
		sent += p.processPage(ctx, due, now)

		if p.cfg.BatchLimit <= 0 || int64(len(due)) < p.cfg.BatchLimit {
			break
		}
		last := due[len(due)-1]
		cursor = &repository.PageCursor{At: last.ScheduledTime, ID: last.ID}
	}

	if total > 0 {
		logger.Log.WithFields(logrus.Fields{
			"due":  total,
			"sent": sent,
		}).Info("Processed due reminders")
	}
	return int(sent), nil
}

func (p *DueReminderProcessor) processPage(ctx context.Context, due []models.TaskReminder, now time.Time) int64 {
	var sent atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i := range due {
		r := due[i]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome, err := p.processOne(gctx, r, now)
			metrics.RemindersProcessed.WithLabelValues(string(outcome)).Inc()
			if err != nil {
				logger.Log.WithError(err).WithFields(logrus.Fields{
					"reminder_id": r.ID,
					"outcome":     outcome,
				}).Error("Failed to process reminder")
			}
			if outcome == OutcomeSent {
				sent.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return sent.Load()
}

func (p *DueReminderProcessor) processOne(ctx context.Context, r models.TaskReminder, now time.Time) (Outcome, error) {
	if p.cfg.ReminderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.ReminderTimeout)
		defer cancel()
	}

	pref, err := p.preferences.FindByUser(ctx, r.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Log.WithField("user_id", r.UserID).Debug("No notification preferences, skipping reminder")
			return OutcomeNoPrefs, nil
		}
		return OutcomeStoreFailed, fmt.Errorf("load preferences: %w", err)
	}

	channels, ok := ShouldSend(&r, pref, now, p.cfg.QuietHours)
	if !ok {
		return OutcomeSuppressed, nil
	}

	claimed, err := p.reminders.Claim(ctx, r.ID, now, now.Add(-p.cfg.ClaimTTL))
	if err != nil {
		return OutcomeStoreFailed, fmt.Errorf("claim: %w", err)
	}
	if !claimed {
		return OutcomeClaimLost, nil
	}
	r.Status = models.StatusClaimed
	r.ClaimedAt = &now

	// Channels that succeeded on an earlier attempt are not sent again.
	var delivered []models.Channel
	var dispatchErr error
	if remaining := r.Undelivered(channels); len(remaining) > 0 {
		delivery := r
		delivery.Channels = remaining
		delivered, dispatchErr = p.dispatcher.Dispatch(ctx, delivery)
	}

	// The claim is ours now; record the result even if ctx ran out during dispatch.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalWriteTimeout)
	defer cancel()

	if dispatchErr == nil {
		if err := p.reminders.MarkSent(wctx, r.ID, now); err != nil {
			return OutcomeStoreFailed, fmt.Errorf("mark sent: %w", err)
		}
		logger.Log.WithFields(logrus.Fields{
			"reminder_id": r.ID,
			"task_id":     r.TaskID,
			"channels":    channels,
		}).Info("Reminder sent")
		return OutcomeSent, nil
	}

	if err := p.reminders.RecordDelivered(wctx, r.ID, delivered, now); err != nil {
		logger.Log.WithError(err).WithField("reminder_id", r.ID).Warn("Failed to record delivered channels")
	}

	status, err := p.retries.HandleFailure(wctx, r, dispatchErr, now)
	if err != nil {
		return OutcomeStoreFailed, fmt.Errorf("record failure: %w", err)
	}
	if status == models.StatusAbandoned {
		return OutcomeAbandoned, nil
	}
	return OutcomeRetry, nil
}
