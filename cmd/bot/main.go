package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school_schedule_bot/internal/app"
	"school_schedule_bot/internal/domain/reminder"
	"school_schedule_bot/internal/infra/config"
	idb "school_schedule_bot/internal/infra/database"
	"school_schedule_bot/internal/infra/logger"
	"school_schedule_bot/internal/infra/scheduler"
	"school_schedule_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Log.WithField("component", "main")
	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"log_level":   cfg.LogLevel,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established")

	if err := idb.Migrate(db); err != nil {
		log.WithError(err).Fatal("Could not apply database migrations")
	}
	log.Info("Database migrations applied")

	scheduleRepo := idb.NewPostgresScheduleRepository(db)
	userRepo := idb.NewPostgresUserRepository(db)

	var ledger reminder.Ledger
	switch cfg.LedgerMode {
	case config.LedgerMemory:
		ledger = idb.NewMemoryReminderLedger()
	default:
		ledger = idb.NewPostgresReminderLedger(db)
	}
	log.WithField("ledger_mode", cfg.LedgerMode).Info("Repositories initialized")

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Log.WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Unhandled bot error")
		},
	})
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}

	scheduleService := app.NewScheduleService(scheduleRepo)
	preferenceService := app.NewPreferenceService(userRepo)
	adminService := app.NewAdminService(scheduleRepo, cfg.AdminIDs)
	reminderService := app.NewReminderService(
		scheduleRepo,
		userRepo,
		ledger,
		telegram.NewTelebotAdapter(bot),
		logger.Log.WithField("component", "reminder_service"),
		cfg.Location,
		cfg.RetentionDays,
	)

	reminderScheduler := scheduler.NewReminderScheduler(
		reminderService,
		logger.Log.WithField("component", "scheduler"),
		cfg.Location,
		cfg.PollInterval,
	)
	if err := reminderScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Could not start reminder scheduler")
	}

	handlers := telegram.NewHandlerSet(
		bot,
		cfg,
		scheduleService,
		preferenceService,
		adminService,
		logger.Log.WithField("component", "telegram_handlers"),
	)
	handlers.Register(context.Background())
	log.Info("Bot handlers registered")

	go bot.Start()
	log.Info("Bot started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	reminderScheduler.Stop()
	bot.Stop()
	log.Info("Shut down gracefully")
}
