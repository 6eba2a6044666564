package schedule

import "time"

// BellTime holds the default start/end times for a lesson slot. It is the
// fallback anchor when a Lesson carries no explicit start time.
type BellTime struct {
	LessonNumber int
	StartTime    string // "HH:MM"
	EndTime      string // "HH:MM"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
