package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/bot/dispatcher"
	"yoga_schedule_bot/internal/bot/service"
	"yoga_schedule_bot/internal/config"
	"yoga_schedule_bot/internal/schedule"
	"yoga_schedule_bot/internal/scheduler/cron"
	"yoga_schedule_bot/internal/server"
	"yoga_schedule_bot/internal/storage"
	"yoga_schedule_bot/internal/storage/sqlstore"
	"yoga_schedule_bot/internal/storage/supabase"
	"yoga_schedule_bot/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", logger.Error(err))
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logger.LevelInfo
	}
	log := logger.New(level)
	logger.SetDefault(log)
	log.Info("Starting Yoga Schedule Bot",
		logger.String("version", version),
		logger.String("mode", cfg.Telegram.Mode),
		logger.String("storage", cfg.Storage.Driver),
	)

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage", logger.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Storage.HTTPTimeout)
	if err := store.Ping(pingCtx); err != nil {
		log.Warn("Storage is not reachable yet", logger.Error(err))
	}
	cancel()

	loc := cfg.Location()
	sched := schedule.NewService(store, log, loc, cfg.Schedule.WindowDays)

	var updates *dispatcher.Dispatcher
	b, err := tgbot.New(cfg.Telegram.Token,
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
			updates.HandleUpdate(ctx, b, update)
		}),
	)
	if err != nil {
		log.Fatal("Failed to create Telegram bot", logger.Error(err))
	}

	botService := service.NewService(b, sched, cfg, log)
	updates = dispatcher.NewDispatcher(botService)

	go func() {
		if _, err := sched.EnsureDefaultScheduleWindow(ctx); err != nil {
			log.Error("Initial schedule fill failed", logger.Error(err))
		}
	}()

	jobs := cron.New(loc, botService, sched, cron.Config{
		NotificationTime:  cfg.Notification.Time,
		InitTime:          cfg.Schedule.InitTime,
		AppURL:            cfg.Notification.AppURL,
		KeepAliveInterval: cfg.Notification.KeepAliveInterval,
	}, log)
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", logger.Error(err))
	}
	defer jobs.Stop()

	deps := server.Deps{
		Storage:  store,
		Schedule: sched,
		Notifier: botService,
		Jobs:     jobs,
		Version:  version,
	}

	switch cfg.Telegram.Mode {
	case config.ModeWebhook:
		if err := setupWebhook(ctx, b, cfg); err != nil {
			log.Fatal("Failed to setup webhook", logger.Error(err))
		}
		deps.Updates = func(ctx context.Context, update *tgmodels.Update) {
			updates.HandleUpdate(ctx, b, update)
		}
	default:
		if _, err := b.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
			log.Warn("Failed to delete webhook before polling", logger.Error(err))
		}
		go b.Start(ctx)
		log.Info("Long polling started")
	}

	srv := server.New(cfg, log, deps)
	if err := srv.Start(ctx); err != nil {
		log.Error("Server error", logger.Error(err))
		return
	}

	log.Info("Server stopped gracefully")
}

// openStorage выбирает хранилище по STORAGE_DRIVER
func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSupabase:
		return supabase.New(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey, cfg.Storage.HTTPTimeout), nil
	default:
		return sqlstore.New(cfg.Storage.Driver, cfg.Storage.DSN)
	}
}

// setupWebhook регистрирует webhook в Telegram
func setupWebhook(ctx context.Context, b *tgbot.Bot, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := b.SetWebhook(ctx, &tgbot.SetWebhookParams{
		URL:         cfg.Telegram.WebhookURL,
		SecretToken: cfg.Telegram.SecretToken,
	})
	if err != nil {
		return err
	}

	logger.Info("Webhook set", logger.String("url", cfg.Telegram.WebhookURL))
	return nil
}
