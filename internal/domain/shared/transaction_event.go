package shared

import (
	"time"

	"github.com/google/uuid"

	"github.com/double-entry-ledger/internal/domain/ledger"
)

// EventSource tells consumers which path recorded the transaction
type EventSource string

const (
	EventSourceAPI       EventSource = "api"
	EventSourceAppend    EventSource = "append"
	EventSourceProcessor EventSource = "processor"
)

// EventEntry is an entry with its formatted amount
type EventEntry struct {
	ledger.Entry
	DisplayAmount string `json:"display_amount"`
}

// TransactionRecordedEvent is published after a transaction has been stored
type TransactionRecordedEvent struct {
	EventID     string       `json:"event_id"`
	TxnID       string       `json:"txn_id"`
	LedgerID    string       `json:"ledger_id"`
	EffectiveAt time.Time    `json:"effective_at"`
	Metadata    string       `json:"metadata,omitempty"`
	Currencies  []string     `json:"currencies"`
	Entries     []EventEntry `json:"entries"`
	Source      EventSource  `json:"source"`
	TraceID     string       `json:"trace_id,omitempty"`
	RecordedAt  time.Time    `json:"recorded_at"`
}

func NewTransactionRecordedEvent(txn *ledger.Transaction, source EventSource, traceID string) *TransactionRecordedEvent {
	entries := make([]EventEntry, len(txn.Entries))
	for i, e := range txn.Entries {
		entries[i] = EventEntry{Entry: e, DisplayAmount: e.DisplayAmount()}
	}

	return &TransactionRecordedEvent{
		EventID:     uuid.NewString(),
		TxnID:       txn.TxnID,
		LedgerID:    txn.LedgerID,
		EffectiveAt: txn.EffectiveAt,
		Metadata:    txn.Metadata,
		Currencies:  txn.Currencies(),
		Entries:     entries,
		Source:      source,
		TraceID:     traceID,
		RecordedAt:  time.Now().UTC(),
	}
}
