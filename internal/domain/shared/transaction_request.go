package shared

import (
	"strings"
	"time"

	"github.com/double-entry-ledger/internal/domain/ledger"
)

// TransactionRequest defines a Kafka message for transaction processing
type TransactionRequest struct {
	TxnID       string         `json:"txn_id"`
	LedgerID    string         `json:"ledger_id"`
	EffectiveAt *time.Time     `json:"effective_at,omitempty"`
	Metadata    string         `json:"metadata,omitempty"`
	Entries     []ledger.Entry `json:"entries"`
	TraceID     string         `json:"trace_id,omitempty"`
}

// ToDraft converts the request into input for the validator
func (r TransactionRequest) ToDraft() ledger.Draft {
	return ledger.Draft{
		TxnID:       r.TxnID,
		LedgerID:    r.LedgerID,
		EffectiveAt: r.EffectiveAt,
		Metadata:    r.Metadata,
		Entries:     r.Entries,
	}
}

// FailureReason is attached to dead-lettered requests
type FailureReason string

const (
	FailureReasonUndecodable          FailureReason = "UNDECODABLE_MESSAGE"
	FailureReasonDuplicateTransaction FailureReason = "DUPLICATE_TRANSACTION"
)

// ValidationFailureReason maps a validator reason such as unbalanced_currency
// to UNBALANCED_CURRENCY
func ValidationFailureReason(reason ledger.Reason) FailureReason {
	return FailureReason(strings.ToUpper(string(reason)))
}
