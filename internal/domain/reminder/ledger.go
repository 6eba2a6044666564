package reminder

import "context"

// Key identifies a single delivered reminder. The composite of all five
// fields is unique in the ledger; inserting a duplicate is a no-op.
type Key struct {
	DateKey         string // "YYYY-MM-DD" in the bot's timezone
	UserID          int64
	DayOfWeek       int
	LessonNumber    int
	ReminderMinutes int
}

// Ledger records reminders that have already been delivered so that a
// subsequent tick within the same fire window does not send them again.
// The Postgres implementation survives restarts; the in-memory one trades
// that guarantee for zero storage (see infra/database for both).
type Ledger interface {
	// AlreadySent reports whether key was recorded before.
	AlreadySent(ctx context.Context, key Key) (bool, error)
	// MarkSent records key. Recording an existing key is not an error.
	MarkSent(ctx context.Context, key Key) error
	// Cleanup drops records whose date key is older than retainDays days.
	Cleanup(ctx context.Context, retainDays int) error
}
