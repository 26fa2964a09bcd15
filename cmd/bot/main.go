package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reminder_calendar_bot/internal/app"
	"reminder_calendar_bot/internal/domain/reminder"
	"reminder_calendar_bot/internal/infra/config"
	idb "reminder_calendar_bot/internal/infra/database"
	"reminder_calendar_bot/internal/infra/logger"
	"reminder_calendar_bot/internal/infra/scheduler"
	"reminder_calendar_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Shared reminder calendar bot starting")

	ctx := context.Background()

	// Initialize the reminder store. Exactly one backing store is configured.
	var repo reminder.Repository
	var closeStore func() error
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to database: %v", err)
		}
		pgRepo := idb.NewPostgresReminderRepository(db)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			db.Close()
			log.Fatalf("FATAL: Could not ensure database schema: %v", err)
		}
		repo = pgRepo
		closeStore = db.Close
		log.Info("PostgreSQL reminder store initialized")
	} else {
		sqliteRepo, err := idb.NewSQLiteReminderRepository(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("FATAL: Could not open SQLite store: %v", err)
		}
		repo = sqliteRepo
		closeStore = sqliteRepo.Close
		log.WithField("path", cfg.SQLitePath).Info("SQLite reminder store initialized")
	}
	defer closeStore()

	service := app.NewReminderService(
		repo,
		log.WithField("component", "reminder_service"),
		cfg.AllowPastDates,
		cfg.WeekStart,
	)
	log.Info("Reminder service initialized")

	sweepScheduler := scheduler.NewSweepScheduler(
		service,
		log.WithField("component", "sweep_scheduler"),
		cfg.CronSpecSweep,
	)
	if err := sweepScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start sweep scheduler: %v", err)
	}

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Bot handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}

	telegram.RegisterReminderHandlers(ctx, bot, service, log.WithField("component", "reminder_handlers"))
	telegram.RegisterCalendarHandlers(ctx, bot, service, log.WithField("component", "calendar_handlers"))
	log.Info("Bot handlers registered")

	log.Info("Application setup complete. Bot and scheduler are starting...")
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	sweepScheduler.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully")
}
