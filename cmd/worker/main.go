// Command worker consumes contribution events and keeps the on-disk CSV
// export mirror current. It also refreshes the mirror periodically to cover
// any missed events.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dizimo/internal/amqp"
	"dizimo/internal/config"
	applog "dizimo/internal/log"
	"dizimo/internal/storage"
	"dizimo/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentExporter)
	applog.SetDefault(logger)

	logger.Info("Starting export worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(repo, cfg.ExportDir)

	// On startup, rebuild the mirror to cover events missed while down.
	if err := exportWorker.Refresh(ctx); err != nil {
		logger.Error("Startup refresh failed", "error", err)
		// Don't exit - the consume loop will retry on the next event
	}

	go func() {
		err := amqpClient.ConsumeContributionEvents(ctx, func(event *amqp.ContributionEvent) error {
			return exportWorker.HandleEvent(ctx, event)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Event consumption failed", "error", err)
		}
		cancel()
	}()

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := exportWorker.Refresh(ctx); err != nil {
					logger.Error("Periodic refresh failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Export worker stopped")
}
