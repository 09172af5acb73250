package account

import (
	"context"
)

// Repository stores ledger and account reference records
type Repository interface {
	CreateLedger(ctx context.Context, ledger *Ledger) error
	GetLedger(ctx context.Context, id string) (*Ledger, error)
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
}

// ErrLedgerNotFound indicates missing ledger
type ErrLedgerNotFound struct {
	LedgerID string
}

func (e ErrLedgerNotFound) Error() string {
	return "ledger not found: " + e.LedgerID
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID
}

// ErrDuplicateLedger indicates a ledger ID that is already taken
type ErrDuplicateLedger struct {
	LedgerID string
}

func (e ErrDuplicateLedger) Error() string {
	return "ledger already exists: " + e.LedgerID
}

// ErrDuplicateAccount indicates an account ID that is already taken
type ErrDuplicateAccount struct {
	AccountID string
}

func (e ErrDuplicateAccount) Error() string {
	return "account already exists: " + e.AccountID
}
