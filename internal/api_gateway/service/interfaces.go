package service

import (
	"context"

	"github.com/double-entry-ledger/internal/domain/account"
	"github.com/double-entry-ledger/internal/domain/ledger"
)

// AccountService manages the ledger and account reference records
type AccountService interface {
	// CreateLedger returns account.ErrDuplicateLedger if the ID is taken.
	// An empty id generates one.
	CreateLedger(ctx context.Context, id, name, description string) (*account.Ledger, error)

	// GetLedger returns account.ErrLedgerNotFound if the ledger doesn't exist
	GetLedger(ctx context.Context, id string) (*account.Ledger, error)

	// CreateAccount returns account.ErrLedgerNotFound for an unknown ledger and
	// account.ErrDuplicateAccount if the ID is taken
	CreateAccount(ctx context.Context, id, ledgerID, name, currency, description string) (*account.Account, error)

	// GetAccount returns account.ErrAccountNotFound if the account doesn't exist
	GetAccount(ctx context.Context, id string) (*account.Account, error)
}

// TransactionService defines the interface for transaction operations
type TransactionService interface {
	// CreateTransaction validates and stores the draft.
	// Returns ledger.ValidationError or ledger.ErrDuplicateTransaction on rejection.
	CreateTransaction(ctx context.Context, draft ledger.Draft) (*ledger.Transaction, error)

	// GetTransaction returns nil if the transaction is not found
	GetTransaction(ctx context.Context, txnID string) (*ledger.Transaction, error)

	// GetEntries returns the entry index, empty for unknown IDs
	GetEntries(ctx context.Context, txnID string) ([]ledger.Entry, error)

	// AppendEntries adds entries to a stored transaction after re-validating the
	// whole set. Returns ledger.ErrTransactionNotFound if there is nothing to append to.
	AppendEntries(ctx context.Context, txnID string, entries []ledger.Entry) (*ledger.Transaction, error)
}
