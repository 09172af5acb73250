package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryColumns = []string{"account_id", "amount", "decimal_places", "currency", "metadata"}

func sampleTransaction() *ledger.Transaction {
	return &ledger.Transaction{
		TxnID:       "txn_pg",
		LedgerID:    "ldg_main",
		EffectiveAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Metadata:    "invoice 7",
		Entries: []ledger.Entry{
			{AccountID: "cash", Amount: 1000, DecimalPlaces: 2, Currency: "USD"},
			{AccountID: "revenue", Amount: -1000, DecimalPlaces: 2, Currency: "USD", Metadata: "q2"},
		},
	}
}

func expectEntryInserts(mock pgxmock.PgxPoolIface, txn *ledger.Transaction) {
	for _, e := range txn.Entries {
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(txn.TxnID, e.AccountID, e.Amount, e.DecimalPlaces, e.Currency, e.Metadata, entrySourceTransaction).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
}

func TestLedgerRepository_SaveTransaction_Overwrite(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newLedgerRepository(newTestLogger(), mock, "")
	txn := sampleTransaction()

	t.Run("success", func(t *testing.T) {
		mock.ExpectBeginTx(pgx.TxOptions{})
		mock.ExpectExec("INSERT INTO ledger_transactions .* DO UPDATE").
			WithArgs(txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("DELETE FROM ledger_entries").
			WithArgs(txn.TxnID).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))
		expectEntryInserts(mock, txn)
		mock.ExpectCommit()

		saved, err := repo.SaveTransaction(ctx, txn)
		require.NoError(t, err)
		assert.Equal(t, txn, saved)
		assert.NotSame(t, txn, saved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("entry insert fails", func(t *testing.T) {
		dbErr := errors.New("disk full")
		mock.ExpectBeginTx(pgx.TxOptions{})
		mock.ExpectExec("INSERT INTO ledger_transactions").
			WithArgs(txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("DELETE FROM ledger_entries").
			WithArgs(txn.TxnID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(dbErr)
		mock.ExpectRollback()

		saved, err := repo.SaveTransaction(ctx, txn)
		assert.Nil(t, saved)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to save transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_SaveTransaction_Reject(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newLedgerRepository(newTestLogger(), mock, ledger.DuplicatePolicyReject)
	txn := sampleTransaction()

	t.Run("first save", func(t *testing.T) {
		mock.ExpectBeginTx(pgx.TxOptions{})
		mock.ExpectExec("INSERT INTO ledger_transactions .* DO NOTHING").
			WithArgs(txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("DELETE FROM ledger_entries").
			WithArgs(txn.TxnID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		expectEntryInserts(mock, txn)
		mock.ExpectCommit()

		_, err := repo.SaveTransaction(ctx, txn)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate", func(t *testing.T) {
		mock.ExpectBeginTx(pgx.TxOptions{})
		mock.ExpectExec("INSERT INTO ledger_transactions .* DO NOTHING").
			WithArgs(txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectRollback()

		saved, err := repo.SaveTransaction(ctx, txn)
		assert.Nil(t, saved)
		assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction{TxnID: "txn_pg"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_GetTransaction(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newLedgerRepository(newTestLogger(), mock, "")
	txn := sampleTransaction()

	t.Run("success", func(t *testing.T) {
		mock.ExpectBeginTx(persistence.ReadSnapshot)
		mock.ExpectQuery("FROM ledger_transactions").
			WithArgs(txn.TxnID).
			WillReturnRows(pgxmock.NewRows([]string{"txn_id", "ledger_id", "effective_at", "metadata"}).
				AddRow(txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata))
		rows := pgxmock.NewRows(entryColumns)
		for _, e := range txn.Entries {
			rows.AddRow(e.AccountID, e.Amount, e.DecimalPlaces, e.Currency, e.Metadata)
		}
		mock.ExpectQuery("source = 'transaction'").WithArgs(txn.TxnID).WillReturnRows(rows)
		mock.ExpectCommit()

		got, err := repo.GetTransaction(ctx, txn.TxnID)
		require.NoError(t, err)
		assert.Equal(t, txn, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectBeginTx(persistence.ReadSnapshot)
		mock.ExpectQuery("FROM ledger_transactions").WithArgs("txn_none").WillReturnError(pgx.ErrNoRows)
		mock.ExpectCommit()

		got, err := repo.GetTransaction(ctx, "txn_none")
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectBeginTx(persistence.ReadSnapshot)
		mock.ExpectQuery("FROM ledger_transactions").WithArgs(txn.TxnID).WillReturnError(dbErr)
		mock.ExpectRollback()

		got, err := repo.GetTransaction(ctx, txn.TxnID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_SaveEntry(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newLedgerRepository(newTestLogger(), mock, "")
	entry := ledger.Entry{AccountID: "adjustment", Amount: 42, DecimalPlaces: 2, Currency: "USD"}

	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs("txn_pg", entry.AccountID, entry.Amount, entry.DecimalPlaces, entry.Currency, entry.Metadata, entrySourceAppended).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := repo.SaveEntry(ctx, "txn_pg", entry)
	require.NoError(t, err)
	assert.Equal(t, entry, *saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_GetEntriesByTransaction(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newLedgerRepository(newTestLogger(), mock, "")

	t.Run("insertion order", func(t *testing.T) {
		rows := pgxmock.NewRows(entryColumns).
			AddRow("cash", int64(1000), int32(2), "USD", "").
			AddRow("revenue", int64(-1000), int32(2), "USD", "").
			AddRow("adjustment", int64(42), int32(2), "USD", "")
		mock.ExpectQuery(`WHERE txn_id = \$1 ORDER BY id`).WithArgs("txn_pg").WillReturnRows(rows)

		entries, err := repo.GetEntriesByTransaction(ctx, "txn_pg")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "adjustment", entries[2].AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		mock.ExpectQuery(`WHERE txn_id = \$1 ORDER BY id`).WithArgs("txn_none").WillReturnRows(pgxmock.NewRows(entryColumns))

		entries, err := repo.GetEntriesByTransaction(ctx, "txn_none")
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_UpdateTransaction(t *testing.T) {
	ctx := context.Background()
	txn := sampleTransaction()
	headerColumns := []string{"txn_id", "ledger_id", "effective_at", "metadata"}
	extra := ledger.Entry{AccountID: "fx", Amount: 0, DecimalPlaces: 2, Currency: "EUR"}

	expectLockedRead := func(mock pgxmock.PgxPoolIface) {
		mock.ExpectQuery(`FROM ledger_transactions WHERE txn_id = \$1 FOR UPDATE`).
			WithArgs(txn.TxnID).
			WillReturnRows(pgxmock.NewRows(headerColumns).
				AddRow(txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata))
		rows := pgxmock.NewRows(entryColumns)
		for _, e := range txn.Entries {
			rows.AddRow(e.AccountID, e.Amount, e.DecimalPlaces, e.Currency, e.Metadata)
		}
		mock.ExpectQuery("source = 'transaction'").WithArgs(txn.TxnID).WillReturnRows(rows)
	}

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := newLedgerRepository(newTestLogger(), mock, "")

		want := txn.Clone()
		want.Entries = append(want.Entries, extra)

		mock.ExpectBeginTx(pgx.TxOptions{})
		expectLockedRead(mock)
		mock.ExpectExec("UPDATE ledger_transactions").
			WithArgs(txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("DELETE FROM ledger_entries").
			WithArgs(txn.TxnID).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		expectEntryInserts(mock, want)
		mock.ExpectCommit()

		updated, err := repo.UpdateTransaction(ctx, txn.TxnID, func(current *ledger.Transaction) (*ledger.Transaction, error) {
			assert.Equal(t, txn, current)
			current.Entries = append(current.Entries, extra)
			return current, nil
		})
		require.NoError(t, err)
		assert.Equal(t, want, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := newLedgerRepository(newTestLogger(), mock, "")

		mock.ExpectBeginTx(pgx.TxOptions{})
		mock.ExpectQuery("FOR UPDATE").WithArgs("txn_none").WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		updated, err := repo.UpdateTransaction(ctx, "txn_none", func(*ledger.Transaction) (*ledger.Transaction, error) {
			t.Fatal("update func must not run")
			return nil, nil
		})
		assert.Nil(t, updated)
		assert.Equal(t, ledger.ErrTransactionNotFound{TxnID: "txn_none"}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reject policy", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := newLedgerRepository(newTestLogger(), mock, ledger.DuplicatePolicyReject)

		mock.ExpectBeginTx(pgx.TxOptions{})
		mock.ExpectQuery("FOR UPDATE").
			WithArgs(txn.TxnID).
			WillReturnRows(pgxmock.NewRows(headerColumns).
				AddRow(txn.TxnID, txn.LedgerID, txn.EffectiveAt, txn.Metadata))
		mock.ExpectRollback()

		_, err = repo.UpdateTransaction(ctx, txn.TxnID, func(current *ledger.Transaction) (*ledger.Transaction, error) {
			return current, nil
		})
		assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction{TxnID: txn.TxnID})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update func error rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := newLedgerRepository(newTestLogger(), mock, "")
		rejected := ledger.ValidationError{Reason: ledger.ReasonUnbalancedCurrency, TxnID: txn.TxnID, Currency: "EUR", Sum: 5}

		mock.ExpectBeginTx(pgx.TxOptions{})
		expectLockedRead(mock)
		mock.ExpectRollback()

		_, err = repo.UpdateTransaction(ctx, txn.TxnID, func(*ledger.Transaction) (*ledger.Transaction, error) {
			return nil, rejected
		})
		assert.Equal(t, rejected, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("write fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := newLedgerRepository(newTestLogger(), mock, "")
		dbErr := errors.New("connection reset")

		mock.ExpectBeginTx(pgx.TxOptions{})
		expectLockedRead(mock)
		mock.ExpectExec("UPDATE ledger_transactions").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(dbErr)
		mock.ExpectRollback()

		_, err = repo.UpdateTransaction(ctx, txn.TxnID, func(current *ledger.Transaction) (*ledger.Transaction, error) {
			return current, nil
		})
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to update transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
