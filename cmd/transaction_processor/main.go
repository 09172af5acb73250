package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/double-entry-ledger/internal/config"
	"github.com/double-entry-ledger/internal/data"
	"github.com/double-entry-ledger/internal/logger"
	"github.com/double-entry-ledger/internal/platform/messaging/consumers"
	"github.com/double-entry-ledger/internal/platform/messaging/producers"
	"github.com/double-entry-ledger/internal/transaction_processor/components"
	"github.com/double-entry-ledger/internal/transaction_processor/consumer"
	"github.com/double-entry-ledger/internal/transaction_processor/service"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("transaction_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	if !cfg.Kafka.Enabled {
		log.Error("The transaction processor consumes from Kafka; set KAFKA_ENABLED=true")
		os.Exit(1)
	}

	log.Info("Starting Transaction Processor",
		"backend", cfg.Storage.Backend,
		"topic", cfg.Kafka.TransactionTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)

	repos, err := data.Open(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open storage backend", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	processingService := components.CreateProcessingService(repos.Ledger, eventProducer, dlqProducer, log, cfg)
	handler := consumer.NewTransactionRequestHandler(log, processingService, dlqProducer)

	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)
	if err := kafkaConsumer.Subscribe(appCtx, handler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to Kafka topic", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	// Stops the consume loop; in-flight messages are not committed and will be redelivered
	cancelAppCtx()

	if wpService, ok := processingService.(*service.WorkerPoolProcessingService); ok {
		wpService.Shutdown()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	var shutdownErr error
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
		shutdownErr = err
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
		shutdownErr = err
	}
	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka event producer", "error", err)
		shutdownErr = err
	}
	if err := repos.Close(shutdownCtx); err != nil {
		log.Error("Error closing storage backend", "error", err)
		shutdownErr = err
	}

	if shutdownErr != nil {
		log.Error("Transaction Processor shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Transaction Processor shutdown completed successfully")
}
