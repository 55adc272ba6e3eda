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
	"github.com/google/uuid"
)

// PreferenceService reads and writes per-user notification preferences,
// supplying the compiled-in defaults when a user has none.
type PreferenceService struct {
	store repository.PreferenceStore
	now   Clock
}

// NewPreferenceService creates a new instance of PreferenceService.
func NewPreferenceService(store repository.PreferenceStore, clock Clock) *PreferenceService {
	return &PreferenceService{store: store, now: clockOrDefault(clock)}
}

// Get returns the stored preferences or apperrors.ErrNotFound.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	return s.store.FindByUser(ctx, userID)
}

// GetOrCreateDefaults returns the user's preferences, persisting defaults on first use.
func (s *PreferenceService) GetOrCreateDefaults(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	pref, err := s.store.FindByUser(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	pref = models.DefaultNotificationPreference(userID, s.now())
	pref.ID = uuid.NewString()
	if err := s.store.Insert(ctx, pref); err != nil {
		// Another request created them first; theirs win.
		if errors.Is(err, apperrors.ErrConflict) {
			return s.store.FindByUser(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}

	logger.Log.WithField("user_id", userID).Info("Created default notification preferences")
	return pref, nil
}

// Update applies a partial update, creating default preferences first when none exist.
func (s *PreferenceService) Update(ctx context.Context, userID string, upd models.NotificationPreferenceUpdate) (*models.NotificationPreference, error) {
	if err := ValidatePreferenceUpdate(upd); err != nil {
		return nil, err
	}
	// Stored bounds are always "HH:MM" so string comparisons order them correctly.
	for _, v := range []*string{upd.QuietHoursStart, upd.QuietHoursEnd} {
		if v != nil {
			*v = normalizeClock(*v)
		}
	}

	pref, err := s.GetOrCreateDefaults(ctx, userID)
	if err != nil {
		return nil, err
	}

	upd.Apply(pref)
	pref.UpdatedAt = s.now()
	if err := s.store.Replace(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	logger.Log.WithField("user_id", userID).Info("Notification preferences updated")
	return pref, nil
}

// ValidatePreferenceUpdate rejects negative advance times, malformed quiet hours and unknown time zones.
func ValidatePreferenceUpdate(upd models.NotificationPreferenceUpdate) error {
	if upd.ReminderAdvanceTime != nil && *upd.ReminderAdvanceTime < 0 {
		return apperrors.NewValidation("reminder_advance_time must not be negative")
	}
	for field, v := range map[string]*string{
		"quiet_hours_start": upd.QuietHoursStart,
		"quiet_hours_end":   upd.QuietHoursEnd,
	} {
		if v == nil || *v == "" {
			continue
		}
		if _, ok := parseClock(*v); !ok {
			return apperrors.NewValidation("%s must be HH:MM, got %q", field, *v)
		}
	}
	if upd.Timezone != nil && *upd.Timezone != "" {
		if _, err := time.LoadLocation(*upd.Timezone); err != nil {
			return apperrors.NewValidation("unknown timezone %q", *upd.Timezone)
		}
	}
	return nil
}
