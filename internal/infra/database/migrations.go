package database

import (
	"database/sql"
	"fmt"

	"github.com/GuiaBolso/darwin"
)

var migrations = []darwin.Migration{
	{
		Version:     1,
		Description: "Create schedule_items table",
		Script: `CREATE TABLE schedule_items (
			id BIGSERIAL PRIMARY KEY,
			day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 1 AND 7),
			lesson_number SMALLINT NOT NULL CHECK (lesson_number BETWEEN 1 AND 10),
			subject TEXT NOT NULL,
			room TEXT,
			teacher TEXT,
			start_time VARCHAR(5),
			end_time VARCHAR(5),
			is_online BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT schedule_items_slot_unique UNIQUE (day_of_week, lesson_number)
		);`,
	},
	{
		Version:     2,
		Description: "Create bell_times table",
		Script: `CREATE TABLE bell_times (
			lesson_number SMALLINT PRIMARY KEY CHECK (lesson_number BETWEEN 1 AND 10),
			start_time VARCHAR(5) NOT NULL,
			end_time VARCHAR(5) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
	{
		Version:     3,
		Description: "Create user_settings table",
		Script: `CREATE TABLE user_settings (
			user_id BIGINT PRIMARY KEY,
			reminders_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			reminder_minutes SMALLINT NOT NULL DEFAULT 10,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
	{
		Version:     4,
		Description: "Create reminder_log table with composite dedup key",
		Script: `CREATE TABLE reminder_log (
			id BIGSERIAL PRIMARY KEY,
			date_key VARCHAR(10) NOT NULL,
			user_id BIGINT NOT NULL,
			day_of_week SMALLINT NOT NULL,
			lesson_number SMALLINT NOT NULL,
			reminder_minutes SMALLINT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT reminder_log_key_unique UNIQUE (date_key, user_id, day_of_week, lesson_number, reminder_minutes)
		);`,
	},
	{
		Version:     5,
		Description: "Index reminder_log by date_key for retention cleanup",
		Script:      `CREATE INDEX reminder_log_date_key_idx ON reminder_log (date_key);`,
	},
}

// Migrate applies all pending schema migrations.
func Migrate(db *sql.DB) error {
	driver := darwin.NewGenericDriver(db, darwin.PostgresDialect{})
	if err := darwin.New(driver, migrations, nil).Migrate(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return nil
}
