package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/task-reminders/internal/metrics"
	"github.com/Dias221467/task-reminders/internal/services"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	SweepDue     = "due"
	SweepOverdue = "overdue"
)

// DueProcessor is satisfied by services.DueReminderProcessor.
type DueProcessor interface {
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

// OverdueScanner is satisfied by services.OverdueScanner.
type OverdueScanner interface {
	ScanOverdue(ctx context.Context, now time.Time) (int, error)
}

type ReminderSweeper struct {
	Processor DueProcessor
	Scanner   OverdueScanner
	Timeout   time.Duration
	Now       services.Clock
}

// NewReminderSweeper creates a new instance of ReminderSweeper
func NewReminderSweeper(processor DueProcessor, scanner OverdueScanner, timeout time.Duration, clock services.Clock) *ReminderSweeper {
	if clock == nil {
		clock = services.SystemClock
	}
	return &ReminderSweeper{
		Processor: processor,
		Scanner:   scanner,
		Timeout:   timeout,
		Now:       clock,
	}
}

// RunDueSweep delivers every reminder that has come due
func (s *ReminderSweeper) RunDueSweep(ctx context.Context) error {
	return s.run(ctx, SweepDue, s.Processor.ProcessDue)
}

// RunOverdueSweep creates reminders for tasks past their due date
func (s *ReminderSweeper) RunOverdueSweep(ctx context.Context) error {
	return s.run(ctx, SweepOverdue, s.Scanner.ScanOverdue)
}

func (s *ReminderSweeper) run(ctx context.Context, name string, fn func(context.Context, time.Time) (int, error)) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := fn(ctx, s.Now())
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.SweepDuration.WithLabelValues(name, status).Observe(elapsed.Seconds())

	fields := logrus.Fields{"sweep": name, "count": n, "elapsed": elapsed.String()}
	if err != nil {
		logger.Log.WithFields(fields).WithError(err).Error("Reminder sweep failed")
		return fmt.Errorf("%s sweep: %w", name, err)
	}
	logger.Log.WithFields(fields).Debug("Reminder sweep completed")
	return nil
}
