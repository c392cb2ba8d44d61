package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"schoolsite/internal/amqp"
	"schoolsite/internal/cli"
	"schoolsite/internal/config"
	applog "schoolsite/internal/log"
	"schoolsite/internal/services"
	gsheet "schoolsite/internal/sheets/google"
	"schoolsite/internal/storage"
	"schoolsite/internal/worker"
)

func main() {
	cfg, logger, err := cli.Bootstrap(applog.ComponentWorker, (*config.Config).ValidateWorker)
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	logger.Info("Starting schoolsite-worker")

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer repo.Close()

	sheet, err := gsheet.NewFeeSheet(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleFeesSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	// rows that failed in an earlier run get another chance
	if n, err := repo.RequeueFeeSyncErrors(ctx); err != nil {
		logger.Error("Failed to requeue fee records with sync errors", applog.FieldError, err)
	} else if n > 0 {
		logger.Info("Requeued fee records with sync errors", applog.FieldCount, n)
	}

	syncWorker := worker.NewSyncWorker(repo, sheet, logger)
	sweeper := services.NewSyncProcessor(repo, syncWorker, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Consume(gctx, syncWorker) })
	g.Go(func() error { return sweeper.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		return
	}
	logger.Info("Worker shutdown complete")
}
