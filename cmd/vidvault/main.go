package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mlenoir/vidvault/internal/api"
	"github.com/mlenoir/vidvault/internal/config"
	"github.com/mlenoir/vidvault/internal/localstore"
	"github.com/mlenoir/vidvault/internal/scheduler"
	"github.com/mlenoir/vidvault/internal/services/progress"
	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/mlenoir/vidvault/internal/services/syncer"
	"github.com/mlenoir/vidvault/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting vidvault")
	logger.WithField("config_dir", filepath.Dir(cfg.LocalStoreFile)).Info("Configuration loaded")

	// 3. Open the local store
	kv, err := localstore.OpenBolt(cfg.LocalStoreFile)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer kv.Close()
	logger.Info("Local store opened")

	// 4. Initialize services
	store := storage.NewFactory(cfg, logger)
	progressStore := progress.NewStore(kv, logger)
	engine := syncer.NewEngine(progressStore, kv, cfg.SyncEndpoint, logger)
	logger.WithField("sync_endpoint", cfg.SyncEndpoint).Info("Services initialized")

	// 5. Initialize scheduler
	sched := scheduler.NewScheduler(engine, cfg.SyncIntervalMinutes, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 6. Initialize HTTP server
	server := api.NewServer(cfg, store, progressStore, engine, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 7. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("vidvault is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("vidvault stopped")
	return nil
}
