package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/bot"
	"github.com/m3rciful/cashbot/internal/config"
	"github.com/m3rciful/cashbot/internal/database"
	"github.com/m3rciful/cashbot/internal/logger"
	"github.com/m3rciful/cashbot/internal/repo"
	"github.com/m3rciful/cashbot/internal/service"
	"github.com/m3rciful/cashbot/internal/telegram"
	"github.com/m3rciful/cashbot/internal/telegram/middleware"
	"github.com/m3rciful/cashbot/internal/telegram/sender"
	"github.com/m3rciful/cashbot/internal/telegram/state"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("cashbot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	log.Printf("loading config: %s", cfgPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		return err
	}

	store := repo.New(db)
	svc := service.New(store)
	fsm := state.NewMemoryManager()
	reg := telegram.NewRegistry()
	dispatcher := sender.NewDispatcher(sender.Options{})

	startedAt := time.Now()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return telegram.Run(ctx, telegram.RunOptions{
		Config:     cfg,
		Registry:   reg,
		Dispatcher: dispatcher,
		Middlewares: []telegram.Middleware{
			{Name: "rate_limit", Use: middleware.RateLimit(rateLimitOptions(cfg))},
		},
		OnStart: func(ctx context.Context, b *tele.Bot) ([]telegram.Route, error) {
			files := bot.NewFiles(b, cfg.Files.InvoicesDir, cfg.Files.ChecksDir)
			app := bot.New(b, svc, fsm, files, reg, dispatcher, cfg.Auth.Password)
			routes := app.Wire()
			logger.L.Info("app ready",
				slog.Duration("startup_duration", logger.Took(startedAt)),
			)
			return routes, nil
		},
	})
}

func rateLimitOptions(cfg *config.Config) middleware.RateLimitOptions {
	exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		exclude[kind] = struct{}{}
	}
	return middleware.RateLimitOptions{
		Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		Exclude:  exclude,
	}
}
