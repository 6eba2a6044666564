package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"school_schedule_bot/internal/domain/schedule"
	"school_schedule_bot/internal/timeutil"
)

// Custom application-level errors for admin and preference flows
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrInvalidDay = fmt.Errorf("day of week must be between 1 and 7")
var ErrInvalidLessonNumber = fmt.Errorf("lesson number must be between 1 and 10")
var ErrEmptySubject = fmt.Errorf("subject must not be empty")

// LessonInput carries the validated fields of an add/replace lesson request.
type LessonInput struct {
	DayOfWeek    int
	LessonNumber int
	Subject      string
	Room         string // empty means none
	Teacher      string // empty means none
	StartTime    string // "HH:MM", empty means fall back to bell times
	EndTime      string
	IsOnline     bool
}

// AdminService handles the administrator write paths: lesson upserts and
// deletions plus bell-time configuration.
type AdminService struct {
	scheduleRepo schedule.Repository
	adminIDs     map[int64]bool
}

func NewAdminService(scheduleRepo schedule.Repository, adminIDs map[int64]bool) *AdminService {
	return &AdminService{
		scheduleRepo: scheduleRepo,
		adminIDs:     adminIDs,
	}
}

// UpsertLesson validates input and creates or replaces the lesson at
// (input.DayOfWeek, input.LessonNumber).
func (s *AdminService) UpsertLesson(ctx context.Context, performingUserID int64, input LessonInput) (*schedule.Lesson, error) {
	if !s.adminIDs[performingUserID] {
		return nil, ErrAdminNotAuthorized
	}
	if !timeutil.IsValidDay(input.DayOfWeek) {
		return nil, ErrInvalidDay
	}
	if !timeutil.IsValidLessonNumber(input.LessonNumber) {
		return nil, ErrInvalidLessonNumber
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, ErrEmptySubject
	}
	if input.StartTime != "" && !timeutil.IsValidTime(input.StartTime) {
		return nil, fmt.Errorf("%w: %q", timeutil.ErrInvalidTimeFormat, input.StartTime)
	}
	if input.EndTime != "" && !timeutil.IsValidTime(input.EndTime) {
		return nil, fmt.Errorf("%w: %q", timeutil.ErrInvalidTimeFormat, input.EndTime)
	}

	lesson := &schedule.Lesson{
		DayOfWeek:    input.DayOfWeek,
		LessonNumber: input.LessonNumber,
		Subject:      subject,
		Room:         nullString(input.Room),
		Teacher:      nullString(input.Teacher),
		StartTime:    nullString(input.StartTime),
		EndTime:      nullString(input.EndTime),
		IsOnline:     input.IsOnline,
	}
	if err := s.scheduleRepo.UpsertLesson(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to upsert lesson: %w", err)
	}
	return lesson, nil
}

// DeleteLesson removes a lesson and reports whether one existed.
func (s *AdminService) DeleteLesson(ctx context.Context, performingUserID int64, dayOfWeek, lessonNumber int) (bool, error) {
	if !s.adminIDs[performingUserID] {
		return false, ErrAdminNotAuthorized
	}
	if !timeutil.IsValidDay(dayOfWeek) {
		return false, ErrInvalidDay
	}
	if !timeutil.IsValidLessonNumber(lessonNumber) {
		return false, ErrInvalidLessonNumber
	}

	deleted, err := s.scheduleRepo.DeleteLesson(ctx, dayOfWeek, lessonNumber)
	if err != nil {
		return false, fmt.Errorf("failed to delete lesson: %w", err)
	}
	return deleted, nil
}

// SetBellTime validates and stores the bell times for a lesson slot.
func (s *AdminService) SetBellTime(ctx context.Context, performingUserID int64, lessonNumber int, startTime, endTime string) error {
	if !s.adminIDs[performingUserID] {
		return ErrAdminNotAuthorized
	}
	if !timeutil.IsValidLessonNumber(lessonNumber) {
		return ErrInvalidLessonNumber
	}
	if !timeutil.IsValidTime(startTime) {
		return fmt.Errorf("%w: %q", timeutil.ErrInvalidTimeFormat, startTime)
	}
	if !timeutil.IsValidTime(endTime) {
		return fmt.Errorf("%w: %q", timeutil.ErrInvalidTimeFormat, endTime)
	}

	bell := &schedule.BellTime{
		LessonNumber: lessonNumber,
		StartTime:    startTime,
		EndTime:      endTime,
	}
	if err := s.scheduleRepo.UpsertBellTime(ctx, bell); err != nil {
		return fmt.Errorf("failed to upsert bell time: %w", err)
	}
	return nil
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
