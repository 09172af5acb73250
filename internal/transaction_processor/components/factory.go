package components

import (
	"log/slog"

	"github.com/double-entry-ledger/internal/config"
	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/platform/messaging/producers"
	"github.com/double-entry-ledger/internal/transaction_processor/service"
)

// CreateProcessingService creates a new ProcessingService with all its dependencies.
// events may be nil, in which case nothing is published.
func CreateProcessingService(
	ledgerRepo ledger.Repository,
	events producers.EventPublisher,
	dlq producers.DeadLetterPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	validator := NewTransactionValidator(
		ledger.NewValidator(ledger.WithTxnIDPrefix(cfg.Ledger.TxnIDPrefix)),
		logger.With("component", "validator"),
	)
	failureRecorder := NewFailureRecorder(dlq, logger.With("component", "failure_recorder"))
	notifier := NewEventNotifier(events, logger.With("component", "event_notifier"))

	baseService := service.NewProcessingService(
		ledgerRepo,
		validator,
		failureRecorder,
		notifier,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
