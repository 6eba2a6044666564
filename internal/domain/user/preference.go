package user

import "time"

const (
	// DefaultReminderMinutes is the lead time synthesized for users who
	// never configured one.
	DefaultReminderMinutes = 10

	MinReminderMinutes = 5
	MaxReminderMinutes = 60
)

// Preference holds a user's notification settings. A row is only created on
// the first explicit change; until then defaults are synthesized in memory.
type Preference struct {
	UserID           int64
	RemindersEnabled bool
	ReminderMinutes  int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultPreference returns the non-persisted defaults for a user without a
// stored row.
func DefaultPreference(userID int64) *Preference {
	return &Preference{
		UserID:           userID,
		RemindersEnabled: false,
		ReminderMinutes:  DefaultReminderMinutes,
	}
}

// IsValidReminderMinutes reports whether minutes is an accepted lead time.
func IsValidReminderMinutes(minutes int) bool {
	return minutes >= MinReminderMinutes && minutes <= MaxReminderMinutes
}
