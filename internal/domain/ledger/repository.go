package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Repository persists transactions and their entries.
//
// Every implementation keeps the canonical copy of what it stores; returned values
// are copies. Operations are atomic per transaction ID.
type Repository interface {
	// SaveTransaction stores txn and resets the entry index of txn.TxnID to exactly
	// txn.Entries. A second save for the same ID overwrites or fails with
	// ErrDuplicateTransaction depending on the repository's DuplicatePolicy.
	SaveTransaction(ctx context.Context, txn *Transaction) (*Transaction, error)

	// GetTransaction returns nil, nil when no transaction exists for txnID
	GetTransaction(ctx context.Context, txnID string) (*Transaction, error)

	// SaveEntry appends entry to the entry index of txnID, creating it when needed.
	// It never validates balance and never changes a stored Transaction; it is an
	// append-only escape hatch. Balanced appends go through the service layer.
	SaveEntry(ctx context.Context, txnID string, entry Entry) (*Entry, error)

	// GetEntriesByTransaction returns entries in insertion order, or an empty
	// slice when txnID is unknown
	GetEntriesByTransaction(ctx context.Context, txnID string) ([]Entry, error)

	// UpdateTransaction replaces the stored transaction with fn's result as one
	// atomic step per ID: no other save of txnID lands between the read handed
	// to fn and the write. It fails with ErrTransactionNotFound when nothing is
	// stored, and with ErrDuplicateTransaction under DuplicatePolicyReject since
	// stored history is then immutable. An error from fn is returned unchanged
	// and nothing is written. fn may run more than once, so it must not have
	// side effects.
	UpdateTransaction(ctx context.Context, txnID string, fn UpdateFunc) (*Transaction, error)
}

// UpdateFunc receives a copy of the stored transaction and returns its
// replacement, which must keep the same TxnID
type UpdateFunc func(current *Transaction) (*Transaction, error)

// DuplicatePolicy decides what SaveTransaction does with an already stored ID
type DuplicatePolicy string

const (
	DuplicatePolicyOverwrite DuplicatePolicy = "overwrite"
	DuplicatePolicyReject    DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy accepts "overwrite" and "reject" in any case
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case DuplicatePolicyOverwrite:
		return DuplicatePolicyOverwrite, nil
	case DuplicatePolicyReject:
		return DuplicatePolicyReject, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// ErrDuplicateTransaction indicates a save for an existing ID under DuplicatePolicyReject
type ErrDuplicateTransaction struct {
	TxnID string
}

func (e ErrDuplicateTransaction) Error() string {
	return "transaction already exists: " + e.TxnID
}

// Is implements the errors.Is interface for ErrDuplicateTransaction
func (e ErrDuplicateTransaction) Is(target error) bool {
	t, ok := target.(ErrDuplicateTransaction)
	if !ok {
		return false
	}
	// An empty target TxnID matches any duplicate
	if t.TxnID == "" {
		return true
	}
	return e.TxnID == t.TxnID
}

// ErrTransactionNotFound is returned by operations that need a stored transaction
type ErrTransactionNotFound struct {
	TxnID string
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TxnID
}

// ErrConcurrentUpdate is returned when an UpdateTransaction kept losing its
// compare-and-swap to other writers of the same ID
type ErrConcurrentUpdate struct {
	TxnID string
}

func (e ErrConcurrentUpdate) Error() string {
	return "transaction was modified concurrently: " + e.TxnID
}

// CheckUpdated rejects replacements that change the ID
func CheckUpdated(txnID string, updated *Transaction) error {
	if updated == nil {
		return errors.New("update returned no transaction")
	}
	if updated.TxnID != txnID {
		return fmt.Errorf("update changed transaction id %q to %q", txnID, updated.TxnID)
	}
	return nil
}
