package schedule

import (
	"database/sql"
	"time"
)

// Lesson represents a single timetable entry, identified by its
// (day-of-week, lesson-number) slot. At most one lesson exists per slot;
// writes have upsert semantics.
type Lesson struct {
	ID           int64
	DayOfWeek    int // ISO weekday, Monday = 1 .. Sunday = 7
	LessonNumber int // 1..10
	Subject      string
	Room         sql.NullString
	Teacher      sql.NullString
	StartTime    sql.NullString // "HH:MM", empty means fall back to bell times
	EndTime      sql.NullString
	IsOnline     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
