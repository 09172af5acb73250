package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTxnIDPrefix is the prefix every transaction ID must start with
const DefaultTxnIDPrefix = "txn_"

// MinEntries is the smallest number of legs a transaction can have
const MinEntries = 2

// Reason identifies which rule rejected a draft
type Reason string

const (
	ReasonMalformedID         Reason = "malformed_id"
	ReasonInsufficientEntries Reason = "insufficient_entries"
	ReasonAmountOverflow      Reason = "amount_overflow"
	ReasonUnbalancedCurrency  Reason = "unbalanced_currency"
)

// ValidationError is the only error the validator returns
type ValidationError struct {
	Reason   Reason
	TxnID    string
	Currency string // unbalanced_currency, amount_overflow
	Sum      int64  // unbalanced_currency
	Places   int32  // scale of the first entry in Currency, for display
}

func (e ValidationError) Error() string {
	switch e.Reason {
	case ReasonMalformedID:
		return fmt.Sprintf("malformed transaction id %q", e.TxnID)
	case ReasonInsufficientEntries:
		return fmt.Sprintf("transaction %s needs at least %d entries", e.TxnID, MinEntries)
	case ReasonAmountOverflow:
		return fmt.Sprintf("amounts for currency %s overflow in transaction %s", e.Currency, e.TxnID)
	case ReasonUnbalancedCurrency:
		return fmt.Sprintf("entries for currency %s do not balance: sum is %d (%s), expected 0",
			e.Currency, e.Sum, decimal.New(e.Sum, -e.Places).StringFixed(e.Places))
	default:
		return "invalid transaction: " + string(e.Reason)
	}
}

// Is matches on Reason; a target without a Reason matches any ValidationError
func (e ValidationError) Is(target error) bool {
	t, ok := target.(ValidationError)
	if !ok {
		return false
	}
	if t.Reason == "" {
		return true
	}
	return e.Reason == t.Reason
}

// Validator turns drafts into transactions. It holds no mutable state.
type Validator struct {
	prefix string
	now    func() time.Time
}

// Option configures a Validator
type Option func(*Validator)

// WithTxnIDPrefix overrides DefaultTxnIDPrefix
func WithTxnIDPrefix(prefix string) Option {
	return func(v *Validator) {
		v.prefix = prefix
	}
}

// WithClock sets the source of the default EffectiveAt
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		prefix: DefaultTxnIDPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = NewValidator()

// Validate checks a draft with the default prefix and the wall clock
func Validate(d Draft) (*Transaction, error) {
	return defaultValidator.Validate(d)
}

// Validate enforces, in order and stopping at the first violation: the ID prefix,
// the minimum number of entries, and a zero sum for every currency. Entry fields
// are not inspected; an empty currency is a currency like any other.
func (v *Validator) Validate(d Draft) (*Transaction, error) {
	if d.TxnID == "" || !strings.HasPrefix(d.TxnID, v.prefix) {
		return nil, ValidationError{Reason: ReasonMalformedID, TxnID: d.TxnID}
	}

	if len(d.Entries) < MinEntries {
		return nil, ValidationError{Reason: ReasonInsufficientEntries, TxnID: d.TxnID}
	}

	if err := checkBalance(d.TxnID, d.Entries); err != nil {
		return nil, err
	}

	effectiveAt := v.now().UTC()
	if d.EffectiveAt != nil && !d.EffectiveAt.IsZero() {
		effectiveAt = *d.EffectiveAt
	}

	return &Transaction{
		TxnID:       d.TxnID,
		LedgerID:    d.LedgerID,
		EffectiveAt: effectiveAt,
		Metadata:    d.Metadata,
		Entries:     CloneEntries(d.Entries),
	}, nil
}

type currencySum struct {
	sum    decimal.Decimal
	places int32
}

// checkBalance sums minor units per currency without intermediate overflow, so
// entry order never changes the verdict. Only a final sum outside int64 is
// reported as amount_overflow.
func checkBalance(txnID string, entries []Entry) error {
	sums := make(map[string]*currencySum)
	// Currencies are reported in order of first appearance so the verdict does not
	// depend on map iteration order.
	var order []string

	for _, e := range entries {
		acc, ok := sums[e.Currency]
		if !ok {
			acc = &currencySum{sum: decimal.Zero, places: e.DecimalPlaces}
			sums[e.Currency] = acc
			order = append(order, e.Currency)
		}
		acc.sum = acc.sum.Add(decimal.NewFromInt(e.Amount))
	}

	for _, currency := range order {
		acc := sums[currency]
		if acc.sum.IsZero() {
			continue
		}
		total := acc.sum.BigInt()
		if !total.IsInt64() {
			return ValidationError{Reason: ReasonAmountOverflow, TxnID: txnID, Currency: currency}
		}
		return ValidationError{
			Reason:   ReasonUnbalancedCurrency,
			TxnID:    txnID,
			Currency: currency,
			Sum:      total.Int64(),
			Places:   acc.places,
		}
	}
	return nil
}
