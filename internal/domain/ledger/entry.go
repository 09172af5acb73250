package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one leg of a transaction
type Entry struct {
	AccountID     string `json:"account_id" bson:"account_id"`
	Amount        int64  `json:"amount" bson:"amount"` // Signed, in minor units
	DecimalPlaces int32  `json:"decimal_places" bson:"decimal_places"`
	Currency      string `json:"currency" bson:"currency"`
	Metadata      string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Decimal returns the amount scaled by DecimalPlaces, e.g. 1050 with 2 places is 10.50
func (e Entry) Decimal() decimal.Decimal {
	return decimal.New(e.Amount, -e.DecimalPlaces)
}

// DisplayAmount formats the scaled amount with exactly DecimalPlaces digits
func (e Entry) DisplayAmount() string {
	return e.Decimal().StringFixed(e.DecimalPlaces)
}

// Transaction is an atomic, balanced group of entries. Values returned by the
// validator and by repositories are never shared with stored state.
type Transaction struct {
	TxnID       string    `json:"txn_id" bson:"txn_id"`
	LedgerID    string    `json:"ledger_id" bson:"ledger_id"`
	EffectiveAt time.Time `json:"effective_at" bson:"effective_at"`
	Metadata    string    `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Entries     []Entry   `json:"entries" bson:"entries"`
}

// Clone returns a deep copy of the transaction
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Entries = CloneEntries(t.Entries)
	return &clone
}

// Currencies lists the distinct currencies in order of first appearance
func (t *Transaction) Currencies() []string {
	seen := make(map[string]struct{}, len(t.Entries))
	var currencies []string
	for _, e := range t.Entries {
		if _, ok := seen[e.Currency]; ok {
			continue
		}
		seen[e.Currency] = struct{}{}
		currencies = append(currencies, e.Currency)
	}
	return currencies
}

// CloneEntries copies entries into a new, never-nil slice
func CloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Draft is a candidate transaction as supplied by a caller, before validation
type Draft struct {
	TxnID       string     `json:"txn_id"`
	LedgerID    string     `json:"ledger_id"`
	EffectiveAt *time.Time `json:"effective_at,omitempty"`
	Metadata    string     `json:"metadata,omitempty"`
	Entries     []Entry    `json:"entries"`
}
