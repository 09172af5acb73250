// Package mongo provides MongoDB implementations of the domain repositories.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/double-entry-ledger/internal/domain/ledger"
)

const (
	// TransactionCollectionName holds one document per transaction ID
	TransactionCollectionName = "ledger_transactions"
)

// transactionDocument keeps a transaction and its entry index together so every
// repository operation is a single-document write. Transaction is absent when
// only SaveEntry has touched the ID. Every write increments Version.
type transactionDocument struct {
	ID          string              `bson:"_id"`
	Transaction *ledger.Transaction `bson:"transaction,omitempty"`
	Entries     []ledger.Entry      `bson:"entries"`
	Version     int64               `bson:"version"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

// maxUpdateAttempts bounds the compare-and-swap loop in UpdateTransaction
const maxUpdateAttempts = 5

// LedgerRepository implements the ledger.Repository interface for MongoDB.
// BSON datetimes have millisecond precision, so EffectiveAt is truncated.
type LedgerRepository struct {
	db     *mongo.Database
	policy ledger.DuplicatePolicy
	logger *slog.Logger
}

// NewLedgerRepository creates a new MongoDB ledger repository
func NewLedgerRepository(logger *slog.Logger, db *mongo.Database, policy ledger.DuplicatePolicy) *LedgerRepository {
	if policy == "" {
		policy = ledger.DuplicatePolicyOverwrite
	}
	return &LedgerRepository{
		db:     db,
		policy: policy,
		logger: logger,
	}
}

var _ ledger.Repository = (*LedgerRepository)(nil)

func (r *LedgerRepository) collection() *mongo.Collection {
	return r.db.Collection(TransactionCollectionName)
}

func writeUpdate(txn *ledger.Transaction) bson.M {
	return bson.M{
		"$set": bson.M{
			"transaction": txn,
			"entries":     ledger.CloneEntries(txn.Entries),
			"updated_at":  time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
}

// SaveTransaction stores txn and resets its entry index in one document write
func (r *LedgerRepository) SaveTransaction(ctx context.Context, txn *ledger.Transaction) (*ledger.Transaction, error) {
	if txn == nil {
		return nil, errors.New("transaction is nil")
	}
	stored := txn.Clone()
	stored.EffectiveAt = stored.EffectiveAt.UTC().Truncate(time.Millisecond)
	upsert := options.Update().SetUpsert(true)

	var err error
	if r.policy == ledger.DuplicatePolicyReject {
		// Matches only documents without a transaction; an existing one makes
		// the upsert collide on _id
		filter := bson.M{"_id": stored.TxnID, "transaction": bson.M{"$exists": false}}
		_, err = r.collection().UpdateOne(ctx, filter, writeUpdate(stored), upsert)
		if mongo.IsDuplicateKeyError(err) {
			return nil, ledger.ErrDuplicateTransaction{TxnID: stored.TxnID}
		}
	} else {
		filter := bson.M{"_id": stored.TxnID}
		_, err = r.collection().UpdateOne(ctx, filter, writeUpdate(stored), upsert)
		if mongo.IsDuplicateKeyError(err) {
			// A concurrent first save inserted the document; this write now
			// matches it and overwrites
			r.logger.Debug("Retrying save after concurrent insert", "txn_id", stored.TxnID)
			_, err = r.collection().UpdateOne(ctx, filter, writeUpdate(stored), upsert)
		}
	}
	if err != nil {
		r.logger.Error("Failed to save transaction", "txn_id", stored.TxnID, "error", err)
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	return stored.Clone(), nil
}

// UpdateTransaction writes only if the document version is still the one that
// was read, retrying with a fresh read when another writer got there first
func (r *LedgerRepository) UpdateTransaction(ctx context.Context, txnID string, fn ledger.UpdateFunc) (*ledger.Transaction, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		var doc transactionDocument
		err := r.collection().FindOne(ctx, bson.M{"_id": txnID}).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ledger.ErrTransactionNotFound{TxnID: txnID}
			}
			r.logger.Error("Failed to read transaction for update", "txn_id", txnID, "error", err)
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		if doc.Transaction == nil {
			return nil, ledger.ErrTransactionNotFound{TxnID: txnID}
		}
		if r.policy == ledger.DuplicatePolicyReject {
			return nil, ledger.ErrDuplicateTransaction{TxnID: txnID}
		}

		current := doc.Transaction
		current.Entries = ledger.CloneEntries(current.Entries)
		updated, err := fn(current)
		if err != nil {
			return nil, err
		}
		if err := ledger.CheckUpdated(txnID, updated); err != nil {
			return nil, err
		}
		stored := updated.Clone()
		stored.EffectiveAt = stored.EffectiveAt.UTC().Truncate(time.Millisecond)

		filter := bson.M{"_id": txnID, "version": doc.Version}
		res, err := r.collection().UpdateOne(ctx, filter, writeUpdate(stored))
		if err != nil {
			r.logger.Error("Failed to update transaction", "txn_id", txnID, "error", err)
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		if res.MatchedCount == 1 {
			return stored.Clone(), nil
		}
		r.logger.Debug("Transaction changed during update, retrying", "txn_id", txnID, "attempt", attempt)
	}

	r.logger.Warn("Giving up update after repeated concurrent writes", "txn_id", txnID)
	return nil, ledger.ErrConcurrentUpdate{TxnID: txnID}
}

// GetTransaction returns nil, nil when there is no document or it only holds appended entries
func (r *LedgerRepository) GetTransaction(ctx context.Context, txnID string) (*ledger.Transaction, error) {
	var doc transactionDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": txnID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction", "txn_id", txnID, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if doc.Transaction == nil {
		return nil, nil
	}

	txn := doc.Transaction
	txn.Entries = ledger.CloneEntries(txn.Entries)
	return txn, nil
}

// SaveEntry pushes entry onto the index, creating the document when needed
func (r *LedgerRepository) SaveEntry(ctx context.Context, txnID string, entry ledger.Entry) (*ledger.Entry, error) {
	update := bson.M{
		"$push": bson.M{"entries": entry},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
		"$inc":  bson.M{"version": 1},
	}
	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": txnID}, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to save entry", "txn_id", txnID, "error", err)
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	saved := entry
	return &saved, nil
}

func (r *LedgerRepository) GetEntriesByTransaction(ctx context.Context, txnID string) ([]ledger.Entry, error) {
	opts := options.FindOne().SetProjection(bson.M{"entries": 1})

	var doc transactionDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": txnID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []ledger.Entry{}, nil
		}
		r.logger.Error("Failed to get entries", "txn_id", txnID, "error", err)
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	return ledger.CloneEntries(doc.Entries), nil
}
