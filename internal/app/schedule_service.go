package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"school_schedule_bot/internal/domain/schedule"
	"school_schedule_bot/internal/timeutil"
)

// DayNames maps ISO weekday indexes to their Russian display names.
var DayNames = map[int]string{
	1: "Понедельник",
	2: "Вторник",
	3: "Среда",
	4: "Четверг",
	5: "Пятница",
	6: "Суббота",
	7: "Воскресенье",
}

const emptyDayText = "Уроков нет 🎉"

// ScheduleService is the read-only query layer over the timetable: day and
// week views plus the bell-time view with inference fallback.
type ScheduleService struct {
	scheduleRepo schedule.Repository
}

func NewScheduleService(scheduleRepo schedule.Repository) *ScheduleService {
	return &ScheduleService{scheduleRepo: scheduleRepo}
}

// FormatDay renders the day name followed by its ordered lesson lines, or an
// empty-day message.
func (s *ScheduleService) FormatDay(ctx context.Context, dayOfWeek int) (string, error) {
	lessons, err := s.scheduleRepo.ListForDay(ctx, dayOfWeek)
	if err != nil {
		return "", fmt.Errorf("failed to load schedule for day %d: %w", dayOfWeek, err)
	}

	dayName, ok := DayNames[dayOfWeek]
	if !ok {
		dayName = fmt.Sprintf("День %d", dayOfWeek)
	}

	if len(lessons) == 0 {
		return fmt.Sprintf("%s\n\n%s", dayName, emptyDayText), nil
	}

	lines := []string{dayName}
	for _, lesson := range lessons {
		lines = append(lines, formatLessonLine(lesson))
	}
	return strings.Join(lines, "\n"), nil
}

// FormatWeek renders FormatDay for every day of the week.
func (s *ScheduleService) FormatWeek(ctx context.Context) (string, error) {
	parts := make([]string, 0, timeutil.MaxDayOfWeek)
	for day := timeutil.MinDayOfWeek; day <= timeutil.MaxDayOfWeek; day++ {
		part, err := s.FormatDay(ctx, day)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n\n"), nil
}

// FormatBells renders the configured bell times. When none are configured it
// infers one start/end pair per lesson number from the first lesson across
// the week that defines explicit times for that slot.
func (s *ScheduleService) FormatBells(ctx context.Context) (string, error) {
	bells, err := s.scheduleRepo.ListBellTimes(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load bell times: %w", err)
	}

	if len(bells) == 0 {
		bells, err = s.inferBells(ctx)
		if err != nil {
			return "", err
		}
		if len(bells) == 0 {
			return "Звонки пока не настроены.", nil
		}
	}

	lines := []string{"Звонки:"}
	for _, bell := range bells {
		lines = append(lines, fmt.Sprintf("%d) %s-%s", bell.LessonNumber, bell.StartTime, bell.EndTime))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *ScheduleService) inferBells(ctx context.Context) ([]*schedule.BellTime, error) {
	weekly, err := s.scheduleRepo.ListWeek(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly schedule for bell inference: %w", err)
	}

	inferred := make(map[int]*schedule.BellTime)
	for _, lesson := range weekly {
		if !lesson.StartTime.Valid || lesson.StartTime.String == "" ||
			!lesson.EndTime.Valid || lesson.EndTime.String == "" {
			continue
		}
		if _, ok := inferred[lesson.LessonNumber]; ok {
			continue
		}
		inferred[lesson.LessonNumber] = &schedule.BellTime{
			LessonNumber: lesson.LessonNumber,
			StartTime:    lesson.StartTime.String,
			EndTime:      lesson.EndTime.String,
		}
	}

	bells := make([]*schedule.BellTime, 0, len(inferred))
	for _, bell := range inferred {
		bells = append(bells, bell)
	}
	sort.Slice(bells, func(i, j int) bool {
		return bells[i].LessonNumber < bells[j].LessonNumber
	})
	return bells, nil
}

func formatLessonLine(lesson *schedule.Lesson) string {
	timeText := "время не задано"
	if lesson.StartTime.Valid && lesson.StartTime.String != "" &&
		lesson.EndTime.Valid && lesson.EndTime.String != "" {
		timeText = fmt.Sprintf("%s-%s", lesson.StartTime.String, lesson.EndTime.String)
	}

	teacherText := ""
	if lesson.Teacher.Valid && lesson.Teacher.String != "" {
		teacherText = fmt.Sprintf(" (%s)", lesson.Teacher.String)
	}

	return fmt.Sprintf("%d) %s - %s - %s%s",
		lesson.LessonNumber, lesson.Subject, timeText, formatLocation(lesson), teacherText)
}
