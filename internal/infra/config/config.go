package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken  string
	DatabaseURL    string // PostgreSQL; mutually exclusive with SQLitePath
	SQLitePath     string
	LogLevel       string
	Environment    string
	AllowPastDates bool         // most deployments allow backdated reminders
	WeekStart      time.Weekday // first column of the month grid
	CronSpecSweep  string       // out-of-band retention sweep schedule
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		return nil, fmt.Errorf("either DATABASE_URL or SQLITE_PATH must be set")
	}
	if cfg.DatabaseURL != "" && cfg.SQLitePath != "" {
		return nil, fmt.Errorf("DATABASE_URL and SQLITE_PATH are mutually exclusive")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.AllowPastDates = true
	if v := os.Getenv("ALLOW_PAST_DATES"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOW_PAST_DATES: %w", err)
		}
		cfg.AllowPastDates = allow
	}

	switch strings.ToLower(os.Getenv("WEEK_START")) {
	case "", "monday":
		cfg.WeekStart = time.Monday
	case "sunday":
		cfg.WeekStart = time.Sunday
	default:
		return nil, fmt.Errorf("invalid WEEK_START %q: must be 'monday' or 'sunday'", os.Getenv("WEEK_START"))
	}

	cfg.CronSpecSweep = os.Getenv("CRON_SPEC_SWEEP")
	if cfg.CronSpecSweep == "" {
		cfg.CronSpecSweep = "0 3 * * *" // Default: 03:00 daily
	}

	return cfg, nil
}
