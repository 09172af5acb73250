// Package postgres provides PostgreSQL implementations of the domain repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/double-entry-ledger/internal/domain/account"
	"github.com/double-entry-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) *AccountRepository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

var _ account.Repository = (*AccountRepository)(nil)

// CreateLedger stores a new ledger, failing with ErrDuplicateLedger when the ID is taken
func (r *AccountRepository) CreateLedger(ctx context.Context, l *account.Ledger) error {
	query := `
		INSERT INTO ledgers (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.querier.Exec(ctx, query, l.ID, l.Name, l.Description, l.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return account.ErrDuplicateLedger{LedgerID: l.ID}
		}
		r.logger.Error("Failed to create ledger", "ledger_id", l.ID, "error", err)
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	return nil
}

// GetLedger retrieves a ledger by its ID
func (r *AccountRepository) GetLedger(ctx context.Context, id string) (*account.Ledger, error) {
	query := `
		SELECT id, name, description, created_at
		FROM ledgers
		WHERE id = $1
	`

	var l account.Ledger
	err := r.querier.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrLedgerNotFound{LedgerID: id}
		}
		r.logger.Error("Failed to get ledger", "ledger_id", id, "error", err)
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	return &l, nil
}

// CreateAccount stores a new account. The ledger must exist.
func (r *AccountRepository) CreateAccount(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (id, ledger_id, name, currency, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.LedgerID,
		acc.Name,
		acc.Currency,
		acc.Description,
		acc.CreatedAt,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case uniqueViolation:
			return account.ErrDuplicateAccount{AccountID: acc.ID}
		case foreignKeyViolation:
			return account.ErrLedgerNotFound{LedgerID: acc.LedgerID}
		}
		r.logger.Error("Failed to create account", "account_id", acc.ID, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by its ID
func (r *AccountRepository) GetAccount(ctx context.Context, id string) (*account.Account, error) {
	query := `
		SELECT id, ledger_id, name, currency, description, created_at
		FROM accounts
		WHERE id = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.LedgerID,
		&acc.Name,
		&acc.Currency,
		&acc.Description,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
