package service

import (
	"context"

	"github.com/double-entry-ledger/internal/domain/account"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
	}
}

func (s *AccountServiceImpl) CreateLedger(ctx context.Context, id, name, description string) (*account.Ledger, error) {
	l, err := account.NewLedger(id, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.CreateLedger(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *AccountServiceImpl) GetLedger(ctx context.Context, id string) (*account.Ledger, error) {
	return s.accountRepo.GetLedger(ctx, id)
}

// CreateAccount builds and stores an account; the repository enforces that its ledger exists
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, id, ledgerID, name, currency, description string) (*account.Account, error) {
	acc, err := account.NewAccount(id, ledgerID, name, currency, description)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *AccountServiceImpl) GetAccount(ctx context.Context, id string) (*account.Account, error) {
	return s.accountRepo.GetAccount(ctx, id)
}
