package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/domain/shared"
)

type ProcessingServiceImpl struct {
	ledgerRepo      ledger.Repository
	validator       TransactionValidator
	failureRecorder FailureRecorder
	notifier        EventNotifier
	logger          *slog.Logger
}

func NewProcessingService(
	ledgerRepo ledger.Repository,
	validator TransactionValidator,
	failureRecorder FailureRecorder,
	notifier EventNotifier,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		ledgerRepo:      ledgerRepo,
		validator:       validator,
		failureRecorder: failureRecorder,
		notifier:        notifier,
		logger:          logger,
	}
}

// ProcessTransaction validates and stores one request. Rejected requests are
// handed to the failure recorder; storage errors are returned so the message
// is redelivered.
func (s *ProcessingServiceImpl) ProcessTransaction(ctx context.Context, request *shared.TransactionRequest) error {
	logger := s.logger
	if request.TraceID != "" {
		logger = s.logger.With("trace_id", request.TraceID)
	}

	logger.Info("Processing transaction", "txn_id", request.TxnID, "ledger_id", request.LedgerID, "entries", len(request.Entries))

	// 1. Validate
	txn, err := s.validator.Validate(ctx, request)
	if err != nil {
		var validationErr ledger.ValidationError
		if !errors.As(err, &validationErr) {
			return fmt.Errorf("failed to validate transaction %s: %w", request.TxnID, err)
		}
		return s.reject(ctx, logger, request, shared.ValidationFailureReason(validationErr.Reason))
	}

	// 2. Store
	saved, err := s.ledgerRepo.SaveTransaction(ctx, txn)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction{}) {
			return s.reject(ctx, logger, request, shared.FailureReasonDuplicateTransaction)
		}
		logger.Error("Failed to store transaction", "txn_id", request.TxnID, "error", err)
		return fmt.Errorf("failed to store transaction %s: %w", request.TxnID, err)
	}

	// 3. Announce
	s.notifier.NotifyRecorded(ctx, saved, request.TraceID)

	logger.Info("Transaction recorded", "txn_id", saved.TxnID, "currencies", saved.Currencies())
	return nil
}

func (s *ProcessingServiceImpl) reject(ctx context.Context, logger *slog.Logger, request *shared.TransactionRequest, reason shared.FailureReason) error {
	logger.Warn("Transaction rejected", "txn_id", request.TxnID, "reason", reason)
	if err := s.failureRecorder.RecordFailure(ctx, request, reason); err != nil {
		return fmt.Errorf("failed to record rejection of transaction %s: %w", request.TxnID, err)
	}
	return nil
}
