package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/double-entry-ledger/internal/api_gateway"
	"github.com/double-entry-ledger/internal/api_gateway/service"
	"github.com/double-entry-ledger/internal/config"
	"github.com/double-entry-ledger/internal/data"
	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/logger"
	"github.com/double-entry-ledger/internal/platform/messaging/producers"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	repos, err := data.Open(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open storage backend", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	log.Info("Storage backend ready", "backend", repos.Backend, "duplicate_policy", cfg.Ledger.DuplicatePolicy)

	// Left nil when Kafka is disabled so nothing is published
	var publisher producers.EventPublisher
	if cfg.Kafka.Enabled {
		eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize Kafka event producer", "error", err)
			os.Exit(1)
		}
		publisher = eventProducer
	}

	validator := ledger.NewValidator(ledger.WithTxnIDPrefix(cfg.Ledger.TxnIDPrefix))
	accountService := service.NewAccountService(repos.Accounts)
	transactionService := service.NewTransactionService(log, repos.Ledger, validator, publisher)

	server := api_gateway.NewServer(log, cfg, accountService, transactionService)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serverErr = <-errChan:
		log.Error("Server error occurred", "error", serverErr)
	}

	cancelAppCtx()
	log.Info("Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("Error closing Kafka event producer", "error", err)
			shutdownErr = err
		}
	}

	if err := repos.Close(shutdownCtx); err != nil {
		log.Error("Error closing storage backend", "error", err)
		shutdownErr = err
	}

	if serverErr != nil || shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
