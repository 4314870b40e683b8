package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"afftrack/internal/amqp"
	"afftrack/internal/cli"
	"afftrack/internal/log"
	"afftrack/internal/metrics"
	"afftrack/internal/sheets"
	"afftrack/internal/sheets/google"
	"afftrack/internal/sheets/memory"
	"afftrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var writer sheets.ConversionWriter
	if cfg.GoogleSpreadsheetID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		gclient, err := google.NewFromEnv(ctx)
		cancel()
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = gclient
	} else {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exporting to in-memory sheet")
		writer = memory.New()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer amqpClient.Close()

	m := metrics.New()
	syncWorker := worker.NewSyncWorker(repo, writer, m, cfg.SyncBatchSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting AMQP consumer", "queue", cfg.AMQPQueue)
		return amqpClient.ConsumeConversionSync(ctx, func(msg *amqp.ConversionSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPendingConversions(ctx); err != nil {
					logger.Error("Periodic sync failed", log.FieldError, err)
				}
			}
		}
	})

	logger.Info("Worker started",
		"batch_size", cfg.SyncBatchSize,
		"sync_interval", cfg.SyncInterval.String())

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
