// The tick binary serves the reminder scan over HTTP instead of running an
// in-process scheduler. An external cron calls GET / on every tick; a single
// bot instance must not run both this binary and the scheduler in cmd/bot.
package main

import (
	"net/http"
	"time"

	"school_schedule_bot/internal/app"
	"school_schedule_bot/internal/domain/reminder"
	"school_schedule_bot/internal/infra/config"
	idb "school_schedule_bot/internal/infra/database"
	"school_schedule_bot/internal/infra/httpapi"
	"school_schedule_bot/internal/infra/logger"
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
	log := logger.Log.WithField("component", "tick")

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()

	if err := idb.Migrate(db); err != nil {
		log.WithError(err).Fatal("Could not apply database migrations")
	}

	// No poller: the bot client is only used to send messages.
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Client: &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot client")
	}

	var ledger reminder.Ledger
	switch cfg.LedgerMode {
	case config.LedgerMemory:
		ledger = idb.NewMemoryReminderLedger()
	default:
		ledger = idb.NewPostgresReminderLedger(db)
	}

	reminderService := app.NewReminderService(
		idb.NewPostgresScheduleRepository(db),
		idb.NewPostgresUserRepository(db),
		ledger,
		telegram.NewTelebotAdapter(bot),
		logger.Log.WithField("component", "reminder_service"),
		cfg.Location,
		cfg.RetentionDays,
	)

	server := httpapi.NewServer(reminderService, cfg.CronSecret, log)

	addr := ":" + cfg.HTTPPort
	log.WithField("addr", addr).Info("Tick server listening")
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.WithError(err).Fatal("Tick server stopped")
	}
}
