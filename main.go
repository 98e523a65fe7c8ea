package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"courier-bridge-service/api"
	"courier-bridge-service/config"
	"courier-bridge-service/core"
	"courier-bridge-service/workers/shipments"
	"courier-bridge-service/workers/shipments/archive"
	"courier-bridge-service/workers/shipments/processors/acs"
	"courier-bridge-service/workers/shipments/repositories"
	"courier-bridge-service/workers/storefront"
	"courier-bridge-service/workers/storefront/woocommerce"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := core.NewLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Wait for termination signal to exit gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := core.OpenDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	repo := repositories.NewRepository(db, logger)
	if err := repo.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	courier := acs.NewClient(cfg.Courier, logger)
	go func() {
		pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := courier.Ping(pingCtx); err != nil {
			logger.Warn("Courier connectivity check failed", zap.Error(err))
			return
		}
		logger.Info("Courier connectivity check passed")
	}()

	opts := []shipments.LifecycleOption{
		shipments.WithRetryDelay(cfg.Labels.RetryDelay),
		shipments.WithPickupTime(cfg.Pickup.Time),
	}
	if cfg.Archive.Enabled() {
		a, err := archive.NewS3Archive(ctx, cfg.Archive)
		if err != nil {
			logger.Fatal("Failed to set up label archive", zap.Error(err))
		}
		opts = append(opts, shipments.WithArchive(a))
	}
	labels := shipments.NewLabelStore(afero.NewOsFs(), cfg.Labels.Directory)
	lifecycle := shipments.NewLifecycle(logger, courier, repo, labels, opts...)

	reminder, err := shipments.NewReminderWorker(logger, repo, shipments.NewLogNotifier(logger, repo),
		cfg.Pickup.Time, time.Duration(cfg.Pickup.ReminderMinutes)*time.Minute)
	if err != nil {
		logger.Fatal("Invalid pickup configuration", zap.Error(err))
	}

	workers := []core.Worker{
		shipments.NewWorker(logger, repo, lifecycle),
		reminder,
	}

	var orders api.OrderSource
	if cfg.Storefront.Enabled() {
		store := storefront.NewWorker(logger, woocommerce.NewClient(cfg.Storefront, logger, nil), cfg.Storefront.RefreshSchedule)
		workers = append(workers, store)
		orders = store
		go func() {
			_ = store.Refresh(ctx)
		}()
	} else {
		logger.Info("No store configured, order import disabled")
	}

	orchestrator := core.NewOrchestrator(logger, workers)
	if _, err := orchestrator.Start(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}
	defer orchestrator.Stop()

	server := api.New(logger, lifecycle, repo, orders)
	if err := server.Start(ctx, cfg.ListenAddr); err != nil {
		logger.Error("Control API stopped", zap.Error(err))
	}
	logger.Info("Shutting down")
}
