package components

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/double-entry-ledger/internal/domain/shared"
	"github.com/double-entry-ledger/internal/platform/messaging/producers"
	"github.com/double-entry-ledger/internal/transaction_processor/service"
)

type FailureRecorderImpl struct {
	dlq    producers.DeadLetterPublisher
	logger *slog.Logger
}

func NewFailureRecorder(dlq producers.DeadLetterPublisher, logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		dlq:    dlq,
		logger: logger,
	}
}

// RecordFailure dead-letters the request under its transaction ID. When no DLQ
// is configured the request is logged and dropped.
func (r *FailureRecorderImpl) RecordFailure(ctx context.Context, request *shared.TransactionRequest, reason shared.FailureReason) error {
	logger := r.logger
	if request.TraceID != "" {
		logger = r.logger.With("trace_id", request.TraceID)
	}

	value, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal rejected request %s: %w", request.TxnID, err)
	}

	err = r.dlq.PublishToDLQ(ctx, request.TxnID, value, string(reason))
	if errors.Is(err, producers.ErrDLQDisabled) {
		logger.Warn("Dropping rejected transaction request", "txn_id", request.TxnID, "reason", reason)
		return nil
	}
	if err != nil {
		logger.Error("Failed to dead-letter rejected transaction request", "txn_id", request.TxnID, "reason", reason, "error", err)
		return err
	}

	logger.Info("Rejected transaction request dead-lettered", "txn_id", request.TxnID, "reason", reason)
	return nil
}
