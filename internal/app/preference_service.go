package app

import (
	"context"
	"fmt"

	"school_schedule_bot/internal/domain/user"
	idb "school_schedule_bot/internal/infra/database" // For ErrPreferenceNotFound
)

var ErrInvalidReminderMinutes = fmt.Errorf("reminder lead time must be between 5 and 60 minutes")

// PreferenceService manages per-user notification settings.
type PreferenceService struct {
	userRepo user.Repository
}

func NewPreferenceService(userRepo user.Repository) *PreferenceService {
	return &PreferenceService{userRepo: userRepo}
}

// Get returns the user's stored preference, or the synthesized defaults when
// the user never changed anything. Defaults are not persisted.
func (s *PreferenceService) Get(ctx context.Context, userID int64) (*user.Preference, error) {
	pref, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if err == idb.ErrPreferenceNotFound {
			return user.DefaultPreference(userID), nil
		}
		return nil, fmt.Errorf("failed to get user preference: %w", err)
	}
	return pref, nil
}

// SetRemindersEnabled toggles reminder delivery for a user.
func (s *PreferenceService) SetRemindersEnabled(ctx context.Context, userID int64, enabled bool) error {
	if err := s.userRepo.SetRemindersEnabled(ctx, userID, enabled); err != nil {
		return fmt.Errorf("failed to set reminders enabled: %w", err)
	}
	return nil
}

// SetReminderMinutes sets the reminder lead time for a user.
func (s *PreferenceService) SetReminderMinutes(ctx context.Context, userID int64, minutes int) error {
	if !user.IsValidReminderMinutes(minutes) {
		return ErrInvalidReminderMinutes
	}
	if err := s.userRepo.SetReminderMinutes(ctx, userID, minutes); err != nil {
		return fmt.Errorf("failed to set reminder minutes: %w", err)
	}
	return nil
}
