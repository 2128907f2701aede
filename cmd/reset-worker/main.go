package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pantry/internal/backend"
	"pantry/internal/config"
	applog "pantry/internal/log"
	"pantry/internal/services"
)

// reset-worker keeps the monthly rollover from waiting for the first human
// of the month: it loads the document periodically, which applies and
// persists the reset as soon as the calendar flips.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting reset-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Backend configuration invalid", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	inventory := services.NewInventoryService(result.Backend)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Monthly reset sweep configured",
		"interval", cfg.ResetInterval,
		"backend", cfg.DataBackend)

	sweep := func() {
		view := inventory.Get(ctx)
		if view.Warning != "" {
			logger.Warn("Sweep saw a degraded store", "warning", view.Warning)
			return
		}
		logger.Info("Sweep complete",
			"month", view.Document.LastMonth,
			"days_to_points_day", view.Summary.DaysToPointsDay)
	}

	// Run once on startup, then on the ticker.
	sweep()

	ticker := time.NewTicker(cfg.ResetInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reset-worker shutdown complete")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
