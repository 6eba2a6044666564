package schedule

import "context"

// Repository defines the operations for persisting and retrieving timetable
// entries and bell times.
type Repository interface {
	// UpsertLesson creates or replaces the lesson occupying
	// (lesson.DayOfWeek, lesson.LessonNumber).
	UpsertLesson(ctx context.Context, lesson *Lesson) error
	// DeleteLesson removes the lesson at (dayOfWeek, lessonNumber) and
	// reports whether a row existed.
	DeleteLesson(ctx context.Context, dayOfWeek, lessonNumber int) (bool, error)
	// ListForDay returns the lessons of a day ordered by lesson number
	// ascending.
	ListForDay(ctx context.Context, dayOfWeek int) ([]*Lesson, error)
	// ListWeek returns all lessons ordered by day, then lesson number.
	ListWeek(ctx context.Context) ([]*Lesson, error)

	// UpsertBellTime creates or replaces the bell times for a lesson slot.
	UpsertBellTime(ctx context.Context, bell *BellTime) error
	// GetBellTime returns the bell times for a lesson slot, or
	// ErrBellTimeNotFound.
	GetBellTime(ctx context.Context, lessonNumber int) (*BellTime, error)
	// ListBellTimes returns all configured bell times ordered by lesson
	// number ascending.
	ListBellTimes(ctx context.Context) ([]*BellTime, error)
}
