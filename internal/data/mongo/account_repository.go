package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/double-entry-ledger/internal/domain/account"
)

const (
	LedgerCollectionName  = "ledgers"
	AccountCollectionName = "accounts"
)

// AccountRepository implements the account.Repository interface for MongoDB
type AccountRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAccountRepository creates a new MongoDB account repository
func NewAccountRepository(logger *slog.Logger, db *mongo.Database) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

var _ account.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) CreateLedger(ctx context.Context, l *account.Ledger) error {
	_, err := r.db.Collection(LedgerCollectionName).InsertOne(ctx, l)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.ErrDuplicateLedger{LedgerID: l.ID}
		}
		r.logger.Error("Failed to create ledger", "ledger_id", l.ID, "error", err)
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetLedger(ctx context.Context, id string) (*account.Ledger, error) {
	var l account.Ledger
	err := r.db.Collection(LedgerCollectionName).FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, account.ErrLedgerNotFound{LedgerID: id}
		}
		r.logger.Error("Failed to get ledger", "ledger_id", id, "error", err)
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return &l, nil
}

// CreateAccount checks that the ledger exists before inserting
func (r *AccountRepository) CreateAccount(ctx context.Context, acc *account.Account) error {
	if _, err := r.GetLedger(ctx, acc.LedgerID); err != nil {
		return err
	}

	_, err := r.db.Collection(AccountCollectionName).InsertOne(ctx, acc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.ErrDuplicateAccount{AccountID: acc.ID}
		}
		r.logger.Error("Failed to create account", "account_id", acc.ID, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetAccount(ctx context.Context, id string) (*account.Account, error) {
	var acc account.Account
	err := r.db.Collection(AccountCollectionName).FindOne(ctx, bson.M{"_id": id}).Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acc, nil
}
