package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"monedero/internal/config"
	"monedero/internal/events"
	"monedero/internal/export"
	gexport "monedero/internal/export/google"
	applog "monedero/internal/log"
	"monedero/internal/storage"
	"monedero/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	workerLogger := logger.WithComponent(applog.ComponentWorker)

	workerLogger.Info("Starting monedero-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		workerLogger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		workerLogger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		workerLogger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Spreadsheet export is optional: without credentials rows stay in memory,
	// which keeps local runs and tests self-contained.
	var exporter export.TransactionExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gexport.NewFromEnv(context.Background())
		if err != nil {
			workerLogger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		workerLogger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = export.NewMemoryExporter()
		workerLogger.Info("Google Sheets disabled - exporting to memory only")
	}

	amqpClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		workerLogger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(repo.Transactions(), exporter)

	done := make(chan error, 1)
	go func() {
		done <- exportWorker.Run(ctx, amqpClient)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		workerLogger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			workerLogger.Warn("Shutdown timeout reached")
		}
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			workerLogger.Error("Worker stopped unexpectedly", "error", err)
		}
	}
	workerLogger.Info("Worker shutdown complete")
}
