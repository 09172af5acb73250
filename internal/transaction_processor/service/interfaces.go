package service

import (
	"context"

	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/domain/shared"
)

// ProcessingService defines the interface for processing transaction requests.
// A nil error means the request is settled (stored or dead-lettered) and its
// message may be committed.
type ProcessingService interface {
	ProcessTransaction(ctx context.Context, request *shared.TransactionRequest) error
}

// TransactionValidator turns a request into a balanced transaction
type TransactionValidator interface {
	Validate(ctx context.Context, request *shared.TransactionRequest) (*ledger.Transaction, error)
}

// FailureRecorder handles recording rejected requests
type FailureRecorder interface {
	RecordFailure(ctx context.Context, request *shared.TransactionRequest, reason shared.FailureReason) error
}

// EventNotifier announces stored transactions to downstream consumers
type EventNotifier interface {
	NotifyRecorded(ctx context.Context, txn *ledger.Transaction, traceID string)
}
