package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"example.com/learningmate-ops/backend/internal/config"
	"example.com/learningmate-ops/backend/internal/localstate"
	"example.com/learningmate-ops/backend/internal/store"
	"example.com/learningmate-ops/backend/internal/sync"
)

// Агент держит локальную копию данных дашборда в синхронизации с
// сервером: гидратация при старте, отложенные записи локальных правок
// и повторная гидратация по событиям других клиентов.
func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	st := store.New()
	local := localstate.NewFile(cfg.Sync.LocalStatePath)
	client := sync.NewClient(cfg.Sync.BaseURL, cfg.Sync.RequestTimeout)

	syncer := sync.New(client, st, local, logger, sync.Options{
		Debounce:    cfg.Sync.Debounce,
		SettleDelay: cfg.Sync.SettleDelay,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := syncer.Hydrate(ctx); err != nil {
		logger.Warn("initial hydration failed", slog.String("error", err.Error()))
	}

	if err := syncer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("event loop failed", slog.String("error", err.Error()))
	}

	syncer.Flush()
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
	}
}
