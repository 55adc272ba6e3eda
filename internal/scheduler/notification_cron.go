package cron

import (
	"context"
	"fmt"

	"github.com/Dias221467/task-reminders/internal/config"
	"github.com/Dias221467/task-reminders/internal/jobs"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// cronLogger routes cron's own messages through logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.WithFields(cronFields(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Log.WithFields(cronFields(keysAndValues)).WithError(err).Error(msg)
}

// cronFields turns cron's alternating key/value pairs into logrus fields.
// A trailing key without a value is kept with a nil value.
func cronFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{"component": "cron"}
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		var val interface{}
		if i+1 < len(keysAndValues) {
			val = keysAndValues[i+1]
		}
		fields[key] = val
	}
	return fields
}

// StartReminderCronJobs registers the due and overdue sweeps and starts the scheduler.
// A sweep still running when its next tick arrives causes that tick to be skipped.
// The caller stops the returned cron on shutdown.
func StartReminderCronJobs(ctx context.Context, cfg config.SweepConfig, sweeper *jobs.ReminderSweeper) (*cron.Cron, error) {
	l := cronLogger{}
	c := cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)))

	// Deliver due reminders
	if _, err := c.AddFunc(cfg.DueSchedule, func() {
		_ = sweeper.RunDueSweep(ctx)
	}); err != nil {
		return nil, err
	}

	// Create overdue reminders
	if _, err := c.AddFunc(cfg.OverdueSchedule, func() {
		_ = sweeper.RunOverdueSweep(ctx)
	}); err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.WithField("due", cfg.DueSchedule).WithField("overdue", cfg.OverdueSchedule).Info("Reminder cron jobs started")
	return c, nil
}
