package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cctracker/internal/amqp"
	"cctracker/internal/cli"
	"cctracker/internal/config"
	"cctracker/internal/log"
	"cctracker/internal/sheets"
	gsheet "cctracker/internal/sheets/google"
	"cctracker/internal/sheets/memory"
	"cctracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting cctracker-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(logger, cfg); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// run mirrors snapshots until shutdown. It returns only after its deferred
// cleanup has released the backend and the AMQP connection.
func run(logger *log.Logger, cfg *config.Config) error {
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	be := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	var mirror sheets.SnapshotMirror
	if cfg.SheetsEnabled() {
		creds, err := cfg.ServiceAccountCredentials()
		if err != nil {
			return fmt.Errorf("read Google service account: %w", err)
		}
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CardsSheet:      cfg.GoogleCardsSheetName,
			EntriesSheet:    cfg.GoogleEntriesSheetName,
			CredentialsJSON: creds,
		}, logger)
		if err != nil {
			return fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		mirror = client
	} else {
		logger.Info("Google Sheets disabled, mirroring in memory only")
		mirror = memory.New()
	}

	mw := worker.NewMirrorWorker(be.Store, cfg.SnapshotKey, mirror, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mw.Run(gctx, cfg.SyncInterval) })

	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on periodic resync", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			g.Go(func() error { return amqpClient.ConsumeSnapshotSaved(gctx, mw.HandleSnapshotSaved) })
		}
	} else {
		logger.Info("AMQP disabled, relying on periodic resync", "interval", cfg.SyncInterval.String())
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cli.WaitForShutdown(ctx, done)
	return nil
}
