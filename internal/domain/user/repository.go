package user

import "context"

// Subscriber is the projection of a Preference the reminder engine needs.
type Subscriber struct {
	UserID          int64
	ReminderMinutes int
}

// Repository defines the operations for persisting notification preferences.
type Repository interface {
	// SetRemindersEnabled upserts the enabled flag for a user.
	SetRemindersEnabled(ctx context.Context, userID int64, enabled bool) error
	// SetReminderMinutes upserts the lead time for a user.
	SetReminderMinutes(ctx context.Context, userID int64, minutes int) error
	// Get returns the stored preference for a user, or ErrPreferenceNotFound
	// when the user never changed anything.
	Get(ctx context.Context, userID int64) (*Preference, error)
	// ListSubscribers returns all users with reminders enabled.
	ListSubscribers(ctx context.Context) ([]*Subscriber, error)
}
