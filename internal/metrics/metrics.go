package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RemindersScheduled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
			Help: "Number of task reminders created, by notification type",
		},
		[]string{"type"},
	)

	RemindersProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_processed_total",
			Help: "Outcome of due reminders seen by a sweep",
		},
		[]string{"outcome"},
	)

	ChannelDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_channel_deliveries_total",
			Help: "Per-channel delivery attempts",
		},
		[]string{"channel", "status"},
	)

	RemindersAbandoned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_abandoned_total",
			Help: "Reminders that exhausted their retries",
		},
	)

	SweepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reminder_sweep_duration_seconds",
			Help:    "Duration of reminder sweeps",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sweep", "status"},
	)
)

// Init registers the collectors with the default registry.
func Init() {
	prometheus.MustRegister(RemindersScheduled, RemindersProcessed, ChannelDeliveries, RemindersAbandoned, SweepDuration)
}
