package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTimezone      = "Asia/Qyzylorda"
	defaultPollSeconds   = 30
	defaultRetentionDays = 14
	defaultHTTPPort      = "8080"

	// LedgerPostgres keeps the dedup ledger in the database, surviving
	// restarts. LedgerMemory keeps it in process memory only.
	LedgerPostgres = "postgres"
	LedgerMemory   = "memory"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken string
	DatabaseURL   string
	AdminIDs      map[int64]bool
	Location      *time.Location

	PollInterval  time.Duration
	RetentionDays int
	LedgerMode    string

	CronSecret string
	HTTPPort   string

	LogLevel    string
	Environment string
}

// IsAdmin reports whether a Telegram user ID belongs to a configured admin.
func (c *AppConfig) IsAdmin(userID int64) bool {
	return c.AdminIDs[userID]
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Errors are ignored if the .env file doesn't exist; godotenv does not
	// override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDs, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = adminIDs

	timezoneName := strings.TrimSpace(os.Getenv("TIMEZONE"))
	if timezoneName == "" {
		timezoneName = defaultTimezone
	}
	cfg.Location, err = time.LoadLocation(timezoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", timezoneName, err)
	}

	pollSeconds := defaultPollSeconds
	if raw := os.Getenv("REMINDER_POLL_SECONDS"); raw != "" {
		pollSeconds, err = strconv.Atoi(raw)
		if err != nil || pollSeconds <= 0 {
			return nil, fmt.Errorf("invalid REMINDER_POLL_SECONDS: %q", raw)
		}
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	cfg.RetentionDays = defaultRetentionDays
	if raw := os.Getenv("REMINDER_RETENTION_DAYS"); raw != "" {
		cfg.RetentionDays, err = strconv.Atoi(raw)
		if err != nil || cfg.RetentionDays <= 0 {
			return nil, fmt.Errorf("invalid REMINDER_RETENTION_DAYS: %q", raw)
		}
	}

	cfg.LedgerMode = strings.ToLower(os.Getenv("REMINDER_LEDGER"))
	if cfg.LedgerMode == "" {
		cfg.LedgerMode = LedgerPostgres
	}
	if cfg.LedgerMode != LedgerPostgres && cfg.LedgerMode != LedgerMemory {
		return nil, fmt.Errorf("invalid REMINDER_LEDGER %q, expected %q or %q", cfg.LedgerMode, LedgerPostgres, LedgerMemory)
	}

	cfg.CronSecret = strings.TrimSpace(os.Getenv("CRON_SECRET"))

	cfg.HTTPPort = os.Getenv("HTTP_PORT")
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = defaultHTTPPort
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg, nil
}

func parseAdminIDs(raw string) (map[int64]bool, error) {
	ids := make(map[int64]bool)
	for _, chunk := range strings.Split(raw, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		id, err := strconv.ParseInt(chunk, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS contains invalid value %q: %w", chunk, err)
		}
		ids[id] = true
	}
	return ids, nil
}
