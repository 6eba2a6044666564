package app

import (
	"context"
	"fmt"
	"time"

	"school_schedule_bot/internal/domain/reminder"
	"school_schedule_bot/internal/domain/schedule"
	domainTelegram "school_schedule_bot/internal/domain/telegram"
	"school_schedule_bot/internal/domain/user"
	idb "school_schedule_bot/internal/infra/database" // For ErrBellTimeNotFound
	"school_schedule_bot/internal/timeutil"

	"github.com/sirupsen/logrus"
)

// fireWindow is how long after its target instant a reminder stays eligible.
// A tick delayed by up to ~59s can still deliver; once the window closes the
// reminder is not retried. Consecutive ticks landing in the same window are
// deduplicated through the ledger.
const fireWindow = 59 * time.Second

// lastSchoolDay bounds the Monday-first school week; Saturday and Sunday are
// skipped without touching the store.
const lastSchoolDay = 5

// ReminderService periodically scans today's timetable and notifies each
// subscriber once per (date, user, lesson, lead-time) combination.
type ReminderService struct {
	scheduleRepo   schedule.Repository
	userRepo       user.Repository
	ledger         reminder.Ledger
	telegramClient domainTelegram.Client
	logger         *logrus.Entry
	location       *time.Location
	retentionDays  int

	// now is swapped out by tests to drive ticks deterministically.
	now func() time.Time
}

func NewReminderService(
	scheduleRepo schedule.Repository,
	userRepo user.Repository,
	ledger reminder.Ledger,
	telegramClient domainTelegram.Client,
	logger *logrus.Entry,
	location *time.Location,
	retentionDays int,
) *ReminderService {
	return &ReminderService{
		scheduleRepo:   scheduleRepo,
		userRepo:       userRepo,
		ledger:         ledger,
		telegramClient: telegramClient,
		logger:         logger,
		location:       location,
		retentionDays:  retentionDays,
		now:            time.Now,
	}
}

// CheckOnce performs a single reminder scan: it loads today's lessons and the
// active subscribers, fires every reminder whose window contains the current
// instant and is not recorded in the ledger yet, and finally ages out old
// ledger entries. Storage errors abort the tick; a delivery failure for one
// subscriber does not.
func (s *ReminderService) CheckOnce(ctx context.Context) error {
	now := s.now().In(s.location)

	day := timeutil.DayOfWeek(now, s.location)
	if day > lastSchoolDay {
		return nil
	}

	lessons, err := s.scheduleRepo.ListForDay(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to load schedule for day %d: %w", day, err)
	}
	if len(lessons) == 0 {
		return nil
	}

	subscribers, err := s.userRepo.ListSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reminder subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		return nil
	}

	dateKey := timeutil.DateKey(now, s.location)

	for _, lesson := range lessons {
		lessonStart, ok, err := s.resolveStartTime(ctx, now, lesson)
		if err != nil {
			return err
		}
		if !ok {
			// No own start time and no bell time: nothing to anchor a
			// reminder to, skip this lesson for this tick.
			continue
		}

		for _, subscriber := range subscribers {
			minutes := subscriber.ReminderMinutes
			if minutes <= 0 {
				minutes = user.DefaultReminderMinutes
			}
			remindAt := lessonStart.Add(-time.Duration(minutes) * time.Minute)

			sinceTarget := now.Sub(remindAt)
			if sinceTarget < 0 || sinceTarget >= fireWindow {
				continue
			}

			key := reminder.Key{
				DateKey:         dateKey,
				UserID:          subscriber.UserID,
				DayOfWeek:       lesson.DayOfWeek,
				LessonNumber:    lesson.LessonNumber,
				ReminderMinutes: minutes,
			}

			alreadySent, err := s.ledger.AlreadySent(ctx, key)
			if err != nil {
				return fmt.Errorf("failed to check reminder ledger: %w", err)
			}
			if alreadySent {
				continue
			}

			text := formatReminderText(lesson, minutes)
			if err := s.telegramClient.SendMessage(subscriber.UserID, text, nil); err != nil {
				// Not recorded in the ledger: a retry is possible on the
				// next tick while the window is still open.
				s.logger.WithError(err).WithFields(logrus.Fields{
					"user_id":       subscriber.UserID,
					"day_of_week":   lesson.DayOfWeek,
					"lesson_number": lesson.LessonNumber,
				}).Error("Failed to send reminder")
				continue
			}

			if err := s.ledger.MarkSent(ctx, key); err != nil {
				return fmt.Errorf("failed to record sent reminder: %w", err)
			}

			s.logger.WithFields(logrus.Fields{
				"user_id":          subscriber.UserID,
				"day_of_week":      lesson.DayOfWeek,
				"lesson_number":    lesson.LessonNumber,
				"reminder_minutes": minutes,
			}).Info("Reminder sent")
		}
	}

	if err := s.ledger.Cleanup(ctx, s.retentionDays); err != nil {
		return fmt.Errorf("failed to clean up reminder ledger: %w", err)
	}
	return nil
}

// resolveStartTime returns the lesson's effective start on now's calendar
// day: its own start time when present, otherwise the slot's bell time. The
// second return value is false when neither exists.
func (s *ReminderService) resolveStartTime(ctx context.Context, now time.Time, lesson *schedule.Lesson) (time.Time, bool, error) {
	startValue := ""
	if lesson.StartTime.Valid && lesson.StartTime.String != "" {
		startValue = lesson.StartTime.String
	} else {
		bell, err := s.scheduleRepo.GetBellTime(ctx, lesson.LessonNumber)
		if err == nil {
			startValue = bell.StartTime
		} else if err != idb.ErrBellTimeNotFound {
			return time.Time{}, false, fmt.Errorf("failed to load bell time for lesson %d: %w", lesson.LessonNumber, err)
		}
	}
	if startValue == "" {
		return time.Time{}, false, nil
	}

	lessonStart, err := timeutil.Combine(now, startValue, s.location)
	if err != nil {
		// A malformed stored time is a data gap, not a tick failure.
		s.logger.WithError(err).WithFields(logrus.Fields{
			"day_of_week":   lesson.DayOfWeek,
			"lesson_number": lesson.LessonNumber,
		}).Warn("Skipping lesson with malformed start time")
		return time.Time{}, false, nil
	}
	return lessonStart, true, nil
}

func formatReminderText(lesson *schedule.Lesson, minutes int) string {
	return fmt.Sprintf("Через %d минут: %s, %s ⏰", minutes, lesson.Subject, formatLocation(lesson))
}

func formatLocation(lesson *schedule.Lesson) string {
	if lesson.IsOnline {
		return "онлайн"
	}
	room := "—"
	if lesson.Room.Valid && lesson.Room.String != "" {
		room = lesson.Room.String
	}
	return fmt.Sprintf("каб. %s", room)
}
