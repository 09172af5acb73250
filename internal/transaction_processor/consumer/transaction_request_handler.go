package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/double-entry-ledger/internal/domain/shared"
	"github.com/double-entry-ledger/internal/platform/messaging/producers"
	"github.com/double-entry-ledger/internal/transaction_processor/service"
)

// TransactionRequestHandler handles incoming transaction request messages from Kafka
type TransactionRequestHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

func NewTransactionRequestHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *TransactionRequestHandler {
	return &TransactionRequestHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage decodes and processes one message. Returning nil commits its offset.
func (h *TransactionRequestHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.TransactionRequest
	if err := json.Unmarshal(value, &request); err != nil {
		h.logger.Error("Failed to unmarshal transaction request from Kafka message",
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			reason := fmt.Sprintf("%s: %s", shared.FailureReasonUndecodable, err.Error())
			dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason)
			if dlqErr == nil {
				return nil
			}
			h.logger.Error("Failed to publish message to DLQ after unmarshal error",
				"dlq_error", dlqErr,
				"message_key", string(key),
			)
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// The message key is the transaction ID when the body leaves it out
	if request.TxnID == "" {
		request.TxnID = string(key)
	}

	logger := h.logger
	if request.TraceID != "" {
		logger = h.logger.With("trace_id", request.TraceID)
	}

	logger.Info("Received transaction request for processing",
		"txn_id", request.TxnID,
		"ledger_id", request.LedgerID,
		"entries", len(request.Entries),
	)

	if err := h.processingService.ProcessTransaction(ctx, &request); err != nil {
		logger.Error("Failed to process transaction", "txn_id", request.TxnID, "error", err)
		return fmt.Errorf("processing transaction %s failed: %w", request.TxnID, err)
	}

	return nil
}
