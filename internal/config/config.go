package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds every runtime setting of the reminder service.
type Config struct {
	Port        string
	StoreDriver string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	CORSOrigins []string

	LogLevel  string
	LogFormat string

	Sweep SweepConfig
	Email EmailConfig

	AppBaseURL string
}

// SweepConfig controls the periodic due and overdue sweeps.
type SweepConfig struct {
	DueSchedule     string
	OverdueSchedule string
	Timeout         time.Duration
	ReminderTimeout time.Duration
	Workers         int
	BatchLimit      int64
	ClaimTTL        time.Duration
	QuietHoursMode  string
}

// EmailConfig holds SMTP settings. An empty Host switches the sender to mock mode.
type EmailConfig struct {
	Host          string
	Port          int
	Sender        string
	Password      string
	SubjectPrefix string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_DB", "task_reminders")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DUE_SWEEP_SCHEDULE", "@every 1m")
	v.SetDefault("OVERDUE_SWEEP_SCHEDULE", "@every 15m")
	v.SetDefault("SWEEP_TIMEOUT", "2m")
	v.SetDefault("REMINDER_TIMEOUT", "20s")
	v.SetDefault("SWEEP_WORKERS", 4)
	v.SetDefault("SWEEP_BATCH_LIMIT", 500)
	v.SetDefault("CLAIM_TTL", "10m")
	v.SetDefault("QUIET_HOURS_MODE", "interval")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_SUBJECT_PREFIX", "Aurum Life")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
}

// LoadConfig reads an optional .env file and the environment.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:        v.GetString("PORT"),
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:    v.GetString("MONGO_URI"),
		MongoDB:     v.GetString("MONGO_DB"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		AppBaseURL:  strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		Sweep: SweepConfig{
			DueSchedule:     v.GetString("DUE_SWEEP_SCHEDULE"),
			OverdueSchedule: v.GetString("OVERDUE_SWEEP_SCHEDULE"),
			Timeout:         v.GetDuration("SWEEP_TIMEOUT"),
			ReminderTimeout: v.GetDuration("REMINDER_TIMEOUT"),
			Workers:         v.GetInt("SWEEP_WORKERS"),
			BatchLimit:      v.GetInt64("SWEEP_BATCH_LIMIT"),
			ClaimTTL:        v.GetDuration("CLAIM_TTL"),
			QuietHoursMode:  strings.ToLower(v.GetString("QUIET_HOURS_MODE")),
		},
		Email: EmailConfig{
			Host:          v.GetString("SMTP_HOST"),
			Port:          v.GetInt("SMTP_PORT"),
			Sender:        v.GetString("SMTP_SENDER"),
			Password:      v.GetString("SMTP_PASSWORD"),
			SubjectPrefix: v.GetString("EMAIL_SUBJECT_PREFIX"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=%s", DriverMongo)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"DUE_SWEEP_SCHEDULE":     c.Sweep.DueSchedule,
		"OVERDUE_SWEEP_SCHEDULE": c.Sweep.OverdueSchedule,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	if c.Sweep.Workers < 1 {
		return fmt.Errorf("SWEEP_WORKERS must be at least 1")
	}
	if c.Sweep.Timeout <= 0 || c.Sweep.ReminderTimeout <= 0 || c.Sweep.ClaimTTL <= 0 {
		return fmt.Errorf("sweep durations must be positive")
	}
	if c.Sweep.QuietHoursMode != "interval" && c.Sweep.QuietHoursMode != "legacy" {
		return fmt.Errorf("QUIET_HOURS_MODE must be interval or legacy, got %q", c.Sweep.QuietHoursMode)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
