package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyName             = errors.New("name cannot be empty")
	ErrEmptyLedgerID         = errors.New("ledger id cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
)

// Ledger groups accounts. It is a reference record: transactions name a ledger
// by ID but are not checked against the catalog.
type Ledger struct {
	ID          string    `json:"ledger_id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Account is a named, single-currency bucket inside a ledger
type Account struct {
	ID          string    `json:"account_id" bson:"_id"`
	LedgerID    string    `json:"ledger_id" bson:"ledger_id"`
	Name        string    `json:"name" bson:"name"`
	Currency    string    `json:"currency" bson:"currency"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// NewLedger builds a ledger record, generating an ID when id is empty
func NewLedger(id, name, description string) (*Ledger, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if id == "" {
		id = uuid.NewString()
	}

	return &Ledger{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewAccount builds an account record, generating an ID when id is empty.
// The currency is upper-cased.
func NewAccount(id, ledgerID, name, currency, description string) (*Account, error) {
	if strings.TrimSpace(ledgerID) == "" {
		return nil, ErrEmptyLedgerID
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if len(currency) != 3 { // Basic validation for currency code length
		return nil, ErrInvalidCurrencyFormat
	}
	if id == "" {
		id = uuid.NewString()
	}

	return &Account{
		ID:          id,
		LedgerID:    ledgerID,
		Name:        name,
		Currency:    strings.ToUpper(currency),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
