package database

import (
	"context"
	"database/sql"
	"fmt"

	"school_schedule_bot/internal/domain/schedule"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrBellTimeNotFound = fmt.Errorf("bell time not found")

type PostgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

// UpsertLesson creates or replaces the lesson occupying the
// (day_of_week, lesson_number) slot. Replacement relies on the unique
// constraint schedule_items_slot_unique.
func (r *PostgresScheduleRepository) UpsertLesson(ctx context.Context, l *schedule.Lesson) error {
	query := `INSERT INTO schedule_items (day_of_week, lesson_number, subject, room, teacher, start_time, end_time, is_online)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               ON CONFLICT (day_of_week, lesson_number)
               DO UPDATE SET
                   subject = EXCLUDED.subject,
                   room = EXCLUDED.room,
                   teacher = EXCLUDED.teacher,
                   start_time = EXCLUDED.start_time,
                   end_time = EXCLUDED.end_time,
                   is_online = EXCLUDED.is_online,
                   updated_at = NOW()
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		l.DayOfWeek, l.LessonNumber, l.Subject, l.Room, l.Teacher, l.StartTime, l.EndTime, l.IsOnline,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting lesson: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) DeleteLesson(ctx context.Context, dayOfWeek, lessonNumber int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM schedule_items WHERE day_of_week = $1 AND lesson_number = $2`,
		dayOfWeek, lessonNumber)
	if err != nil {
		return false, fmt.Errorf("error deleting lesson: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading affected rows after lesson delete: %w", err)
	}
	return affected > 0, nil
}

func (r *PostgresScheduleRepository) ListForDay(ctx context.Context, dayOfWeek int) ([]*schedule.Lesson, error) {
	query := `SELECT id, day_of_week, lesson_number, subject, room, teacher, start_time, end_time, is_online, created_at, updated_at
               FROM schedule_items
               WHERE day_of_week = $1
               ORDER BY lesson_number ASC`

	rows, err := r.db.QueryContext(ctx, query, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("error listing lessons for day: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

func (r *PostgresScheduleRepository) ListWeek(ctx context.Context) ([]*schedule.Lesson, error) {
	query := `SELECT id, day_of_week, lesson_number, subject, room, teacher, start_time, end_time, is_online, created_at, updated_at
               FROM schedule_items
               ORDER BY day_of_week ASC, lesson_number ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing weekly lessons: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

func scanLessons(rows *sql.Rows) ([]*schedule.Lesson, error) {
	lessons := make([]*schedule.Lesson, 0)
	for rows.Next() {
		l := &schedule.Lesson{}
		if err := rows.Scan(&l.ID, &l.DayOfWeek, &l.LessonNumber, &l.Subject, &l.Room, &l.Teacher, &l.StartTime, &l.EndTime, &l.IsOnline, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lessons: %w", err)
	}
	return lessons, nil
}

func (r *PostgresScheduleRepository) UpsertBellTime(ctx context.Context, b *schedule.BellTime) error {
	query := `INSERT INTO bell_times (lesson_number, start_time, end_time)
               VALUES ($1, $2, $3)
               ON CONFLICT (lesson_number)
               DO UPDATE SET
                   start_time = EXCLUDED.start_time,
                   end_time = EXCLUDED.end_time,
                   updated_at = NOW()
               RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, b.LessonNumber, b.StartTime, b.EndTime).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting bell time: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) GetBellTime(ctx context.Context, lessonNumber int) (*schedule.BellTime, error) {
	query := `SELECT lesson_number, start_time, end_time, created_at, updated_at
               FROM bell_times WHERE lesson_number = $1`
	b := &schedule.BellTime{}
	err := r.db.QueryRowContext(ctx, query, lessonNumber).Scan(&b.LessonNumber, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBellTimeNotFound
		}
		return nil, fmt.Errorf("error getting bell time: %w", err)
	}
	return b, nil
}

func (r *PostgresScheduleRepository) ListBellTimes(ctx context.Context) ([]*schedule.BellTime, error) {
	query := `SELECT lesson_number, start_time, end_time, created_at, updated_at
               FROM bell_times ORDER BY lesson_number ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing bell times: %w", err)
	}
	defer rows.Close()

	bells := make([]*schedule.BellTime, 0)
	for rows.Next() {
		b := &schedule.BellTime{}
		if err := rows.Scan(&b.LessonNumber, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning bell time: %w", err)
		}
		bells = append(bells, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bell times: %w", err)
	}
	return bells, nil
}
