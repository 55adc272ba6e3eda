package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/task-reminders/internal/config"
	"github.com/Dias221467/task-reminders/internal/database"
	"github.com/Dias221467/task-reminders/internal/handlers"
	"github.com/Dias221467/task-reminders/internal/jobs"
	"github.com/Dias221467/task-reminders/internal/metrics"
	"github.com/Dias221467/task-reminders/internal/models"
	"github.com/Dias221467/task-reminders/internal/repository"
	"github.com/Dias221467/task-reminders/internal/repository/memory"
	cron "github.com/Dias221467/task-reminders/internal/scheduler"
	"github.com/Dias221467/task-reminders/internal/services"
	"github.com/Dias221467/task-reminders/pkg/email"
	"github.com/Dias221467/task-reminders/pkg/logger"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type stores struct {
	preferences   repository.PreferenceStore
	reminders     repository.ReminderStore
	notifications repository.BrowserNotificationStore
	tasks         repository.TaskReader
	users         repository.UserReader
	ping          handlers.Pinger
	close         func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Log.Warn("Using in-memory stores; data is lost on restart")
		return &stores{
			preferences:   memory.NewPreferenceStore(),
			reminders:     memory.NewReminderStore(),
			notifications: memory.NewNotificationStore(),
			tasks:         memory.NewTaskStore(),
			users:         memory.NewUserStore(),
			close:         func(context.Context) error { return nil },
		}, nil
	}

	// Connect to MongoDB
	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return &stores{
		preferences:   repository.NewPreferenceRepository(db),
		reminders:     repository.NewReminderRepository(db),
		notifications: repository.NewNotificationRepository(db),
		tasks:         repository.NewTaskRepository(db),
		users:         repository.NewUserRepository(db),
		ping:          func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		close:         db.Client().Disconnect,
	}, nil
}

func main() {
	// Load configuration from .env file and environment
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Configuration error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Log.Info("Logger initialized")
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}

	// --- Services ---
	preferenceService := services.NewPreferenceService(st.preferences, nil)
	scheduler := services.NewReminderScheduler(st.reminders, st.tasks, preferenceService, nil)
	overdueScanner := services.NewOverdueScanner(st.tasks, st.reminders, scheduler, cfg.Sweep.BatchLimit)
	notificationService := services.NewBrowserNotificationService(st.notifications, nil)

	sender := email.NewSender(email.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		From:     cfg.Email.Sender,
		Password: cfg.Email.Password,
	})
	dispatcher := services.NewNotificationDispatcher(st.notifications, st.users, sender, services.EmailSettings{
		SubjectPrefix: cfg.Email.SubjectPrefix,
		AppBaseURL:    cfg.AppBaseURL,
	}, nil)

	retries := services.NewRetryCoordinator(st.reminders)
	retries.OnAbandon = func(ctx context.Context, r models.TaskReminder) {
		metrics.RemindersAbandoned.Inc()
	}

	processor := services.NewDueReminderProcessor(st.reminders, st.preferences, dispatcher, retries, services.ProcessorConfig{
		Workers:         cfg.Sweep.Workers,
		ReminderTimeout: cfg.Sweep.ReminderTimeout,
		ClaimTTL:        cfg.Sweep.ClaimTTL,
		BatchLimit:      cfg.Sweep.BatchLimit,
		QuietHours:      services.QuietHoursMode(cfg.Sweep.QuietHoursMode),
	})

	// --- Background sweeps ---
	sweeper := jobs.NewReminderSweeper(processor, overdueScanner, cfg.Sweep.Timeout, nil)
	cronJobs, err := cron.StartReminderCronJobs(ctx, cfg.Sweep, sweeper)
	if err != nil {
		logger.Log.Fatalf("Failed to start cron jobs: %v", err)
	}

	// --- Handlers ---
	router := handlers.Router{
		JWTSecret:     cfg.JWTSecret,
		Notifications: handlers.NewNotificationHandler(notificationService),
		Preferences:   handlers.NewPreferenceHandler(preferenceService),
		TaskReminders: handlers.NewTaskReminderHandler(scheduler),
		Health:        handlers.HealthHandler(st.ping),
	}.Build()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("HTTP shutdown failed")
	}
	// Wait for running sweeps to finish their current reminders.
	select {
	case <-cronJobs.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Log.Warn("Timed out waiting for sweeps to finish")
	}
	if err := st.close(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Failed to close store")
	}
}
