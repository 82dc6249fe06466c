package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"cctracker/internal/adapters"
	"cctracker/internal/amqp"
	"cctracker/internal/cache"
	"cctracker/internal/cli"
	apphttp "cctracker/internal/http"
	"cctracker/internal/log"
	"cctracker/internal/services"
	"cctracker/internal/state"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	store, err := state.Open(ctx, be.Store,
		state.WithKey(cfg.SnapshotKey),
		state.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to open state store", log.FieldError, err)
		os.Exit(1)
	}
	if w := store.LastWarning(); w != "" {
		logger.Warn("Starting with seed data after a load failure", "warning", w)
	}

	// Notifications are optional: without a broker the server runs standalone.
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, snapshot notifications disabled", log.FieldError, err)
		} else {
			store.OnChange(adapters.NewChangePublisher(amqpClient, logger).Listener())
			logger.Info("Snapshot notifications enabled",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	dashboard := cache.NewDashboardCache(32, 5*time.Minute)
	caches := cache.NewManager(logger)
	caches.Register(dashboard)
	caches.StartCleanup(10 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:              store,
		Cards:              services.NewCardService(store, logger),
		Entries:            services.NewEntryService(store, logger),
		Transfer:           services.NewTransferService(store, logger),
		Dashboard:          dashboard,
		Ready:              be.Ping,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting cctracker server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldKey, cfg.SnapshotKey)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
