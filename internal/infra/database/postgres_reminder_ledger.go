package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"school_schedule_bot/internal/domain/reminder"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresReminderLedger is the durable dedup ledger. The composite unique
// constraint on reminder_log makes MarkSent an atomic insert-if-absent, so
// dedup survives process restarts within the same day.
type PostgresReminderLedger struct {
	db *sql.DB
}

func NewPostgresReminderLedger(db *sql.DB) *PostgresReminderLedger {
	return &PostgresReminderLedger{db: db}
}

func (l *PostgresReminderLedger) AlreadySent(ctx context.Context, key reminder.Key) (bool, error) {
	query := `SELECT EXISTS (
               SELECT 1 FROM reminder_log
               WHERE date_key = $1 AND user_id = $2 AND day_of_week = $3 AND lesson_number = $4 AND reminder_minutes = $5
           )`
	var exists bool
	err := l.db.QueryRowContext(ctx, query,
		key.DateKey, key.UserID, key.DayOfWeek, key.LessonNumber, key.ReminderMinutes,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking reminder log: %w", err)
	}
	return exists, nil
}

func (l *PostgresReminderLedger) MarkSent(ctx context.Context, key reminder.Key) error {
	query := `INSERT INTO reminder_log (date_key, user_id, day_of_week, lesson_number, reminder_minutes)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT ON CONSTRAINT reminder_log_key_unique DO NOTHING`

	_, err := l.db.ExecContext(ctx, query,
		key.DateKey, key.UserID, key.DayOfWeek, key.LessonNumber, key.ReminderMinutes)
	if err != nil {
		return fmt.Errorf("error recording sent reminder: %w", err)
	}
	return nil
}

// Cleanup drops log rows older than retainDays. Lexicographic comparison on
// date_key works because the keys are zero-padded YYYY-MM-DD strings.
func (l *PostgresReminderLedger) Cleanup(ctx context.Context, retainDays int) error {
	border := time.Now().UTC().AddDate(0, 0, -retainDays).Format("2006-01-02")
	if _, err := l.db.ExecContext(ctx, `DELETE FROM reminder_log WHERE date_key < $1`, border); err != nil {
		return fmt.Errorf("error cleaning up reminder log: %w", err)
	}
	return nil
}
