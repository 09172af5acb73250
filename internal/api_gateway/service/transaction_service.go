package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/domain/shared"
	"github.com/double-entry-ledger/internal/platform/messaging/producers"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	ledgerRepo ledger.Repository
	validator  *ledger.Validator
	publisher  producers.EventPublisher
	logger     *slog.Logger
}

// NewTransactionService creates a new transaction service. publisher may be nil
// when event publication is disabled.
func NewTransactionService(logger *slog.Logger, ledgerRepo ledger.Repository, validator *ledger.Validator, publisher producers.EventPublisher) TransactionService {
	return &TransactionServiceImpl{
		ledgerRepo: ledgerRepo,
		validator:  validator,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *TransactionServiceImpl) CreateTransaction(ctx context.Context, draft ledger.Draft) (*ledger.Transaction, error) {
	txn, err := s.validator.Validate(draft)
	if err != nil {
		s.logger.Info("Transaction rejected by validation", "txn_id", draft.TxnID, "error", err)
		return nil, err
	}

	saved, err := s.ledgerRepo.SaveTransaction(ctx, txn)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction{}) {
			s.logger.Info("Transaction ID already recorded", "txn_id", txn.TxnID)
		}
		return nil, err
	}

	s.logger.Info("Transaction recorded",
		"txn_id", saved.TxnID,
		"ledger_id", saved.LedgerID,
		"entries", len(saved.Entries),
	)
	s.publish(ctx, saved, shared.EventSourceAPI)
	return saved, nil
}

// GetTransaction retrieves a transaction by its ID. Returns nil if not found
func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, txnID string) (*ledger.Transaction, error) {
	return s.ledgerRepo.GetTransaction(ctx, txnID)
}

func (s *TransactionServiceImpl) GetEntries(ctx context.Context, txnID string) ([]ledger.Entry, error) {
	return s.ledgerRepo.GetEntriesByTransaction(ctx, txnID)
}

// AppendEntries keeps the stored header (ledger, effective time, metadata) and
// saves stored entries plus the new ones as one balanced transaction. The
// read, validation and write happen inside one repository update, so
// concurrent appends to the same ID never overwrite each other.
func (s *TransactionServiceImpl) AppendEntries(ctx context.Context, txnID string, entries []ledger.Entry) (*ledger.Transaction, error) {
	saved, err := s.ledgerRepo.UpdateTransaction(ctx, txnID, func(stored *ledger.Transaction) (*ledger.Transaction, error) {
		effectiveAt := stored.EffectiveAt
		combined := make([]ledger.Entry, 0, len(stored.Entries)+len(entries))
		combined = append(combined, stored.Entries...)
		combined = append(combined, entries...)

		return s.validator.Validate(ledger.Draft{
			TxnID:       stored.TxnID,
			LedgerID:    stored.LedgerID,
			EffectiveAt: &effectiveAt,
			Metadata:    stored.Metadata,
			Entries:     combined,
		})
	})
	if err != nil {
		if errors.Is(err, ledger.ValidationError{}) {
			s.logger.Info("Append rejected by validation", "txn_id", txnID, "appended", len(entries), "error", err)
		}
		return nil, err
	}

	s.logger.Info("Entries appended", "txn_id", saved.TxnID, "appended", len(entries), "entries", len(saved.Entries))
	s.publish(ctx, saved, shared.EventSourceAppend)
	return saved, nil
}

// publish never fails the write that triggered it
func (s *TransactionServiceImpl) publish(ctx context.Context, txn *ledger.Transaction, source shared.EventSource) {
	if s.publisher == nil {
		return
	}
	event := shared.NewTransactionRecordedEvent(txn, source, shared.TraceIDFromContext(ctx))
	if err := s.publisher.PublishTransactionRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish transaction recorded event",
			"txn_id", txn.TxnID,
			"event_id", event.EventID,
			"error", err,
		)
	}
}
