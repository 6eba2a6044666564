package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// tickTimeout bounds a single reminder scan; a stuck scan must not block the
// loop forever.
const tickTimeout = 1 * time.Minute

// ReminderChecker is the part of the reminder service this scheduler drives.
type ReminderChecker interface {
	CheckOnce(ctx context.Context) error
}

// ReminderScheduler runs the reminder scan on a fixed poll interval. Ticks
// never overlap: a scan still in flight when the next interval fires causes
// that interval to be skipped. A panicking scan is recovered and the loop
// continues on the next interval.
type ReminderScheduler struct {
	cronEngine      *cron.Cron
	reminderService ReminderChecker
	logger          *logrus.Entry
	pollInterval    time.Duration
}

func NewReminderScheduler(
	reminderService ReminderChecker,
	logger *logrus.Entry,
	location *time.Location,
	pollInterval time.Duration,
) *ReminderScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &ReminderScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithChain(
				cron.Recover(cronLogger),
				cron.SkipIfStillRunning(cronLogger),
			),
		),
		reminderService: reminderService,
		logger:          logger,
		pollInterval:    pollInterval,
	}
}

func (s *ReminderScheduler) Start() error {
	s.logger.WithField("poll_interval", s.pollInterval.String()).Info("Starting reminder scheduler")

	spec := fmt.Sprintf("@every %s", s.pollInterval)
	_, err := s.cronEngine.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()
		if err := s.reminderService.CheckOnce(ctx); err != nil {
			s.logger.WithError(err).Error("Reminder tick failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not schedule reminder tick: %w", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started")
	return nil
}

// Stop halts scheduling and waits for an in-flight tick to finish, so shared
// resources such as the bot transport can be torn down safely afterwards.
func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Reminder scheduler stopped")
}
