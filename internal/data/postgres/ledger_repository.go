package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const (
	entrySourceTransaction = "transaction"
	entrySourceAppended    = "appended"
)

// LedgerRepository implements ledger.Repository on PostgreSQL. A save writes the
// transaction header and its entry rows in one SQL transaction; reads use a
// read-only repeatable-read snapshot.
type LedgerRepository struct {
	pool   persistence.Pool
	policy ledger.DuplicatePolicy
	logger *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB, policy ledger.DuplicatePolicy) *LedgerRepository {
	return newLedgerRepository(logger, db.Pool(), policy)
}

func newLedgerRepository(logger *slog.Logger, pool persistence.Pool, policy ledger.DuplicatePolicy) *LedgerRepository {
	if policy == "" {
		policy = ledger.DuplicatePolicyOverwrite
	}
	return &LedgerRepository{pool: pool, policy: policy, logger: logger}
}

var _ ledger.Repository = (*LedgerRepository)(nil)

const (
	upsertTransactionQuery = `
		INSERT INTO ledger_transactions (txn_id, ledger_id, effective_at, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (txn_id) DO UPDATE
		SET ledger_id = EXCLUDED.ledger_id, effective_at = EXCLUDED.effective_at,
			metadata = EXCLUDED.metadata, updated_at = NOW()
	`
	insertTransactionQuery = `
		INSERT INTO ledger_transactions (txn_id, ledger_id, effective_at, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (txn_id) DO NOTHING
	`
	deleteEntriesQuery = `
		DELETE FROM ledger_entries
		WHERE txn_id = $1
	`
	insertEntryQuery = `
		INSERT INTO ledger_entries (txn_id, account_id, amount, decimal_places, currency, metadata, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	selectTransactionQuery = `
		SELECT txn_id, ledger_id, effective_at, metadata
		FROM ledger_transactions
		WHERE txn_id = $1
	`
	selectTransactionForUpdateQuery = `
		SELECT txn_id, ledger_id, effective_at, metadata
		FROM ledger_transactions
		WHERE txn_id = $1
		FOR UPDATE
	`
	updateTransactionQuery = `
		UPDATE ledger_transactions
		SET ledger_id = $2, effective_at = $3, metadata = $4, updated_at = NOW()
		WHERE txn_id = $1
	`
	selectTransactionEntriesQuery = `
		SELECT account_id, amount, decimal_places, currency, metadata
		FROM ledger_entries
		WHERE txn_id = $1 AND source = 'transaction'
		ORDER BY id
	`
	selectEntryIndexQuery = `
		SELECT account_id, amount, decimal_places, currency, metadata
		FROM ledger_entries
		WHERE txn_id = $1
		ORDER BY id
	`
)

// SaveTransaction writes the header and replaces every entry row of the ID
func (r *LedgerRepository) SaveTransaction(ctx context.Context, txn *ledger.Transaction) (*ledger.Transaction, error) {
	if txn == nil {
		return nil, errors.New("transaction is nil")
	}

	err := persistence.ExecuteTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := r.writeHeader(ctx, tx, txn); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, deleteEntriesQuery, txn.TxnID); err != nil {
			return fmt.Errorf("failed to reset entries: %w", err)
		}
		for _, e := range txn.Entries {
			if err := insertEntry(ctx, tx, txn.TxnID, e, entrySourceTransaction); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction{}) {
			return nil, err
		}
		r.logger.Error("Failed to save transaction", "txn_id", txn.TxnID, "error", err)
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	return txn.Clone(), nil
}

func (r *LedgerRepository) writeHeader(ctx context.Context, tx pgx.Tx, txn *ledger.Transaction) error {
	if r.policy == ledger.DuplicatePolicyReject {
		tag, err := tx.Exec(ctx, insertTransactionQuery, txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ledger.ErrDuplicateTransaction{TxnID: txn.TxnID}
		}
		return nil
	}

	if _, err := tx.Exec(ctx, upsertTransactionQuery, txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata); err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, q persistence.Querier, txnID string, e ledger.Entry, source string) error {
	_, err := q.Exec(ctx, insertEntryQuery, txnID, e.AccountID, e.Amount, e.DecimalPlaces, e.Currency, e.Metadata, source)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetTransaction(ctx context.Context, txnID string) (*ledger.Transaction, error) {
	var txn *ledger.Transaction

	err := persistence.ExecuteTx(ctx, r.pool, persistence.ReadSnapshot, func(tx pgx.Tx) error {
		var t ledger.Transaction
		err := tx.QueryRow(ctx, selectTransactionQuery, txnID).Scan(
			&t.TxnID,
			&t.LedgerID,
			&t.EffectiveAt,
			&t.Metadata,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		entries, err := queryEntries(ctx, tx, selectTransactionEntriesQuery, txnID)
		if err != nil {
			return err
		}
		t.EffectiveAt = t.EffectiveAt.UTC()
		t.Entries = entries
		txn = &t
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to get transaction", "txn_id", txnID, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// UpdateTransaction locks the header row for the rest of the SQL transaction,
// so concurrent updates and saves of the ID wait for it to commit
func (r *LedgerRepository) UpdateTransaction(ctx context.Context, txnID string, fn ledger.UpdateFunc) (*ledger.Transaction, error) {
	var updated *ledger.Transaction
	var fnErr error

	err := persistence.ExecuteTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var current ledger.Transaction
		err := tx.QueryRow(ctx, selectTransactionForUpdateQuery, txnID).Scan(
			&current.TxnID,
			&current.LedgerID,
			&current.EffectiveAt,
			&current.Metadata,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ledger.ErrTransactionNotFound{TxnID: txnID}
			}
			return err
		}
		if r.policy == ledger.DuplicatePolicyReject {
			return ledger.ErrDuplicateTransaction{TxnID: txnID}
		}

		entries, err := queryEntries(ctx, tx, selectTransactionEntriesQuery, txnID)
		if err != nil {
			return err
		}
		current.EffectiveAt = current.EffectiveAt.UTC()
		current.Entries = entries

		updated, fnErr = fn(&current)
		if fnErr != nil {
			return fnErr
		}
		if fnErr = ledger.CheckUpdated(txnID, updated); fnErr != nil {
			return fnErr
		}

		if _, err := tx.Exec(ctx, updateTransactionQuery, txnID, updated.LedgerID, updated.EffectiveAt, updated.Metadata); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		if _, err := tx.Exec(ctx, deleteEntriesQuery, txnID); err != nil {
			return fmt.Errorf("failed to reset entries: %w", err)
		}
		for _, e := range updated.Entries {
			if err := insertEntry(ctx, tx, txnID, e, entrySourceTransaction); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if fnErr != nil {
			return nil, fnErr
		}
		var notFound ledger.ErrTransactionNotFound
		if errors.Is(err, ledger.ErrDuplicateTransaction{}) || errors.As(err, &notFound) {
			return nil, err
		}
		r.logger.Error("Failed to update transaction", "txn_id", txnID, "error", err)
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return updated.Clone(), nil
}

// SaveEntry appends a row to the entry index without touching the header
func (r *LedgerRepository) SaveEntry(ctx context.Context, txnID string, entry ledger.Entry) (*ledger.Entry, error) {
	if err := insertEntry(ctx, r.pool, txnID, entry, entrySourceAppended); err != nil {
		r.logger.Error("Failed to save entry", "txn_id", txnID, "error", err)
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	saved := entry
	return &saved, nil
}

func (r *LedgerRepository) GetEntriesByTransaction(ctx context.Context, txnID string) ([]ledger.Entry, error) {
	entries, err := queryEntries(ctx, r.pool, selectEntryIndexQuery, txnID)
	if err != nil {
		r.logger.Error("Failed to get entries", "txn_id", txnID, "error", err)
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	return entries, nil
}

func queryEntries(ctx context.Context, q persistence.Querier, query, txnID string) ([]ledger.Entry, error) {
	rows, err := q.Query(ctx, query, txnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []ledger.Entry{}
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.AccountID, &e.Amount, &e.DecimalPlaces, &e.Currency, &e.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over entries: %w", err)
	}
	return entries, nil
}
