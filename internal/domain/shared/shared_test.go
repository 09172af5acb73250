package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/double-entry-ledger/internal/domain/ledger"
)

func TestTransactionRequest_ToDraft(t *testing.T) {
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	req := TransactionRequest{
		TxnID:       "txn_1",
		LedgerID:    "ldg_main",
		EffectiveAt: &at,
		Metadata:    "batch 9",
		Entries:     []ledger.Entry{{AccountID: "a", Amount: 1, Currency: "USD"}},
		TraceID:     "trace-1",
	}

	d := req.ToDraft()
	assert.Equal(t, "txn_1", d.TxnID)
	assert.Equal(t, "ldg_main", d.LedgerID)
	assert.Equal(t, &at, d.EffectiveAt)
	assert.Equal(t, "batch 9", d.Metadata)
	assert.Equal(t, req.Entries, d.Entries)
}

func TestValidationFailureReason(t *testing.T) {
	assert.Equal(t, FailureReason("UNBALANCED_CURRENCY"), ValidationFailureReason(ledger.ReasonUnbalancedCurrency))
	assert.Equal(t, FailureReason("MALFORMED_ID"), ValidationFailureReason(ledger.ReasonMalformedID))
}

func TestNewTransactionRecordedEvent(t *testing.T) {
	txn := &ledger.Transaction{
		TxnID:       "txn_1",
		LedgerID:    "ldg_main",
		EffectiveAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Entries: []ledger.Entry{
			{AccountID: "cash", Amount: 1050, DecimalPlaces: 2, Currency: "USD"},
			{AccountID: "revenue", Amount: -1050, DecimalPlaces: 2, Currency: "USD"},
			{AccountID: "fx", Amount: 3, DecimalPlaces: 0, Currency: "JPY"},
			{AccountID: "fx", Amount: -3, DecimalPlaces: 0, Currency: "JPY"},
		},
	}

	ev := NewTransactionRecordedEvent(txn, EventSourceAPI, "trace-1")
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "txn_1", ev.TxnID)
	assert.Equal(t, []string{"USD", "JPY"}, ev.Currencies)
	assert.Equal(t, "10.50", ev.Entries[0].DisplayAmount)
	assert.Equal(t, "-3", ev.Entries[3].DisplayAmount)
	assert.Equal(t, EventSourceAPI, ev.Source)
	assert.Equal(t, "trace-1", ev.TraceID)
	assert.False(t, ev.RecordedAt.IsZero())
}
