package database

import (
	"context"
	"database/sql"
	"fmt"

	"school_schedule_bot/internal/domain/user"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrPreferenceNotFound = fmt.Errorf("user preference not found")

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// SetRemindersEnabled upserts the enabled flag. A user touching any setting
// for the first time gets a row with defaults for the remaining columns.
func (r *PostgresUserRepository) SetRemindersEnabled(ctx context.Context, userID int64, enabled bool) error {
	query := `INSERT INTO user_settings (user_id, reminders_enabled)
               VALUES ($1, $2)
               ON CONFLICT (user_id)
               DO UPDATE SET reminders_enabled = EXCLUDED.reminders_enabled, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, userID, enabled); err != nil {
		return fmt.Errorf("error setting reminders_enabled: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) SetReminderMinutes(ctx context.Context, userID int64, minutes int) error {
	query := `INSERT INTO user_settings (user_id, reminder_minutes)
               VALUES ($1, $2)
               ON CONFLICT (user_id)
               DO UPDATE SET reminder_minutes = EXCLUDED.reminder_minutes, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, userID, minutes); err != nil {
		return fmt.Errorf("error setting reminder_minutes: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) Get(ctx context.Context, userID int64) (*user.Preference, error) {
	query := `SELECT user_id, reminders_enabled, reminder_minutes, created_at, updated_at
               FROM user_settings WHERE user_id = $1`
	p := &user.Preference{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.RemindersEnabled, &p.ReminderMinutes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("error getting user preference: %w", err)
	}
	return p, nil
}

func (r *PostgresUserRepository) ListSubscribers(ctx context.Context) ([]*user.Subscriber, error) {
	query := `SELECT user_id, reminder_minutes
               FROM user_settings
               WHERE reminders_enabled = TRUE
               ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing reminder subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := make([]*user.Subscriber, 0)
	for rows.Next() {
		s := &user.Subscriber{}
		if err := rows.Scan(&s.UserID, &s.ReminderMinutes); err != nil {
			return nil, fmt.Errorf("error scanning reminder subscriber: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder subscribers: %w", err)
	}
	return subscribers, nil
}
