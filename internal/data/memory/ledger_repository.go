// Package memory provides volatile, process-local implementations of the
// domain repositories. Contents are lost when the process exits.
package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/double-entry-ledger/internal/domain/ledger"
)

// LedgerRepository implements ledger.Repository with two maps behind one lock:
// transactions by ID, and the entry index by transaction ID.
type LedgerRepository struct {
	mu           sync.RWMutex
	transactions map[string]*ledger.Transaction
	entries      map[string][]ledger.Entry
	policy       ledger.DuplicatePolicy
	logger       *slog.Logger
}

// NewLedgerRepository creates an empty repository. An empty policy means overwrite.
func NewLedgerRepository(logger *slog.Logger, policy ledger.DuplicatePolicy) *LedgerRepository {
	if policy == "" {
		policy = ledger.DuplicatePolicyOverwrite
	}
	return &LedgerRepository{
		transactions: make(map[string]*ledger.Transaction),
		entries:      make(map[string][]ledger.Entry),
		policy:       policy,
		logger:       logger,
	}
}

var _ ledger.Repository = (*LedgerRepository)(nil)

func (r *LedgerRepository) SaveTransaction(ctx context.Context, txn *ledger.Transaction) (*ledger.Transaction, error) {
	if txn == nil {
		return nil, errors.New("transaction is nil")
	}
	stored := txn.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[stored.TxnID]; exists {
		if r.policy == ledger.DuplicatePolicyReject {
			return nil, ledger.ErrDuplicateTransaction{TxnID: stored.TxnID}
		}
		r.logger.Debug("Overwriting stored transaction", "txn_id", stored.TxnID)
	}

	r.transactions[stored.TxnID] = stored
	r.entries[stored.TxnID] = ledger.CloneEntries(stored.Entries)

	return stored.Clone(), nil
}

func (r *LedgerRepository) GetTransaction(ctx context.Context, txnID string) (*ledger.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Clone of a missing entry is nil
	return r.transactions[txnID].Clone(), nil
}

func (r *LedgerRepository) SaveEntry(ctx context.Context, txnID string, entry ledger.Entry) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[txnID] = append(r.entries[txnID], entry)

	saved := entry
	return &saved, nil
}

func (r *LedgerRepository) GetEntriesByTransaction(ctx context.Context, txnID string) ([]ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return ledger.CloneEntries(r.entries[txnID]), nil
}

// UpdateTransaction holds the write lock across fn, so concurrent updates of
// one ID apply in sequence
func (r *LedgerRepository) UpdateTransaction(ctx context.Context, txnID string, fn ledger.UpdateFunc) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.transactions[txnID]
	if !exists {
		return nil, ledger.ErrTransactionNotFound{TxnID: txnID}
	}
	if r.policy == ledger.DuplicatePolicyReject {
		return nil, ledger.ErrDuplicateTransaction{TxnID: txnID}
	}

	updated, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckUpdated(txnID, updated); err != nil {
		return nil, err
	}

	stored := updated.Clone()
	r.transactions[txnID] = stored
	r.entries[txnID] = ledger.CloneEntries(stored.Entries)

	return stored.Clone(), nil
}
