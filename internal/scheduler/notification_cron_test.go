package cron

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/task-reminders/internal/config"
	"github.com/Dias221467/task-reminders/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweep struct{ calls chan struct{} }

func (c countingSweep) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	c.calls <- struct{}{}
	return 0, nil
}

func (c countingSweep) ScanOverdue(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func TestStartReminderCronJobs_RunsDueSweep(t *testing.T) {
	sweep := countingSweep{calls: make(chan struct{}, 4)}
	sweeper := jobs.NewReminderSweeper(sweep, sweep, time.Second, nil)

	c, err := StartReminderCronJobs(context.Background(), config.SweepConfig{
		DueSchedule:     "@every 1s",
		OverdueSchedule: "@every 1h",
	}, sweeper)
	require.NoError(t, err)
	defer c.Stop()

	select {
	case <-sweep.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("due sweep did not run")
	}
	assert.Len(t, c.Entries(), 2)
}

func TestStartReminderCronJobs_RejectsBadSchedule(t *testing.T) {
	sweeper := jobs.NewReminderSweeper(nil, nil, time.Second, nil)

	_, err := StartReminderCronJobs(context.Background(), config.SweepConfig{
		DueSchedule:     "whenever",
		OverdueSchedule: "@hourly",
	}, sweeper)
	assert.Error(t, err)
}

func TestCronFields(t *testing.T) {
	next := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	fields := cronFields([]interface{}{"entry", 1, "next", next, "dangling"})

	assert.Equal(t, "cron", fields["component"])
	assert.Equal(t, 1, fields["entry"])
	assert.Equal(t, next, fields["next"])
	v, ok := fields["dangling"]
	assert.True(t, ok)
	assert.Nil(t, v)
}
