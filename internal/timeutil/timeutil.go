// Package timeutil holds the pure time helpers shared by the schedule and
// reminder services: ISO weekday numbering, combining a calendar day with an
// "HH:MM" string, and day arithmetic.
package timeutil

import (
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidTimeFormat is returned when a value does not match "HH:MM".
var ErrInvalidTimeFormat = fmt.Errorf("invalid time format, expected HH:MM")

var timePattern = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

const (
	MinDayOfWeek    = 1
	MaxDayOfWeek    = 7
	MinLessonNumber = 1
	MaxLessonNumber = 10
)

// IsValidDay reports whether day is a valid ISO day-of-week index.
func IsValidDay(day int) bool {
	return day >= MinDayOfWeek && day <= MaxDayOfWeek
}

// IsValidLessonNumber reports whether n is a valid lesson slot.
func IsValidLessonNumber(n int) bool {
	return n >= MinLessonNumber && n <= MaxLessonNumber
}

// IsValidTime reports whether value matches "HH:MM" (00:00 .. 23:59).
func IsValidTime(value string) bool {
	return timePattern.MatchString(value)
}

// DayOfWeek returns the ISO weekday of t in loc: Monday = 1 .. Sunday = 7.
func DayOfWeek(t time.Time, loc *time.Location) int {
	wd := int(t.In(loc).Weekday())
	if wd == 0 { // time.Sunday is 0, ISO wants 7
		return 7
	}
	return wd
}

// Combine replaces the hour and minute of date's calendar day in loc with the
// parsed hhmm value, zeroing seconds and sub-second precision.
func Combine(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	if !IsValidTime(hhmm) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, hhmm)
	}
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, hhmm)
	}
	local := date.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}

// Tomorrow advances t by one calendar day. AddDate keeps the wall clock
// stable across DST transitions, which is what a daily school timetable
// expects.
func Tomorrow(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}

// DateKey formats t as YYYY-MM-DD in loc. It partitions the reminder dedup
// ledger by calendar day.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
