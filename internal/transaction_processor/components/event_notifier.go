package components

import (
	"context"
	"log/slog"

	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/domain/shared"
	"github.com/double-entry-ledger/internal/platform/messaging/producers"
	"github.com/double-entry-ledger/internal/transaction_processor/service"
)

type EventNotifierImpl struct {
	publisher producers.EventPublisher
	logger    *slog.Logger
}

// NewEventNotifier returns a notifier that does nothing when publisher is nil
func NewEventNotifier(publisher producers.EventPublisher, logger *slog.Logger) service.EventNotifier {
	return &EventNotifierImpl{
		publisher: publisher,
		logger:    logger,
	}
}

// NotifyRecorded publishes a TransactionRecordedEvent. The transaction is
// already stored, so a publish failure is only logged.
func (n *EventNotifierImpl) NotifyRecorded(ctx context.Context, txn *ledger.Transaction, traceID string) {
	if n.publisher == nil {
		return
	}

	event := shared.NewTransactionRecordedEvent(txn, shared.EventSourceProcessor, traceID)
	if err := n.publisher.PublishTransactionRecorded(ctx, event); err != nil {
		n.logger.Error("Failed to publish transaction recorded event",
			"txn_id", txn.TxnID,
			"event_id", event.EventID,
			"trace_id", traceID,
			"error", err,
		)
		return
	}

	n.logger.Debug("Transaction recorded event published", "txn_id", txn.TxnID, "event_id", event.EventID)
}
