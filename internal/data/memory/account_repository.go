package memory

import (
	"context"
	"sync"

	"github.com/double-entry-ledger/internal/domain/account"
)

// AccountRepository implements account.Repository in memory
type AccountRepository struct {
	mu       sync.RWMutex
	ledgers  map[string]account.Ledger
	accounts map[string]account.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		ledgers:  make(map[string]account.Ledger),
		accounts: make(map[string]account.Account),
	}
}

var _ account.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) CreateLedger(ctx context.Context, l *account.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ledgers[l.ID]; exists {
		return account.ErrDuplicateLedger{LedgerID: l.ID}
	}
	r.ledgers[l.ID] = *l
	return nil
}

func (r *AccountRepository) GetLedger(ctx context.Context, id string) (*account.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.ledgers[id]
	if !ok {
		return nil, account.ErrLedgerNotFound{LedgerID: id}
	}
	return &l, nil
}

// CreateAccount requires the account's ledger to exist
func (r *AccountRepository) CreateAccount(ctx context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ledgers[acc.LedgerID]; !ok {
		return account.ErrLedgerNotFound{LedgerID: acc.LedgerID}
	}
	if _, exists := r.accounts[acc.ID]; exists {
		return account.ErrDuplicateAccount{AccountID: acc.ID}
	}
	r.accounts[acc.ID] = *acc
	return nil
}

func (r *AccountRepository) GetAccount(ctx context.Context, id string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	return &acc, nil
}
