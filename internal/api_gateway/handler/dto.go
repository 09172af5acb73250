package handler

import (
	"time"

	"github.com/double-entry-ledger/internal/domain/account"
	"github.com/double-entry-ledger/internal/domain/ledger"
)

// EntryRequest is one leg of a transaction in a request body. Field rules are
// checked by the ledger validator so violations come back as 422.
type EntryRequest struct {
	AccountID     string `json:"account_id" binding:"required"`
	Amount        int64  `json:"amount"`
	DecimalPlaces int32  `json:"decimal_places" binding:"min=0"`
	Currency      string `json:"currency" binding:"required"`
	Metadata      string `json:"metadata,omitempty"`
}

// CreateTransactionRequest represents a request to record a new transaction
type CreateTransactionRequest struct {
	TxnID       string         `json:"txn_id"`
	LedgerID    string         `json:"ledger_id"`
	EffectiveAt *time.Time     `json:"effective_at,omitempty"`
	Metadata    string         `json:"metadata,omitempty"`
	Entries     []EntryRequest `json:"entries" binding:"dive"`
}

// AppendEntriesRequest adds legs to a stored transaction
type AppendEntriesRequest struct {
	Entries []EntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// EntryResponse represents an entry in API responses
type EntryResponse struct {
	AccountID     string `json:"account_id"`
	Amount        int64  `json:"amount"`
	DecimalPlaces int32  `json:"decimal_places"`
	DisplayAmount string `json:"display_amount"`
	Currency      string `json:"currency"`
	Metadata      string `json:"metadata,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	TxnID       string          `json:"txn_id"`
	LedgerID    string          `json:"ledger_id"`
	EffectiveAt string          `json:"effective_at"`
	Metadata    string          `json:"metadata,omitempty"`
	Currencies  []string        `json:"currencies"`
	Entries     []EntryResponse `json:"entries"`
}

// EntryListResponse is the entry index of a transaction
type EntryListResponse struct {
	TxnID   string          `json:"txn_id"`
	Entries []EntryResponse `json:"entries"`
}

// CreateLedgerRequest represents a request to create a ledger record
type CreateLedgerRequest struct {
	ID          string `json:"ledger_id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

// LedgerResponse represents a ledger in API responses
type LedgerResponse struct {
	ID          string `json:"ledger_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// CreateAccountRequest represents a request to create an account record
type CreateAccountRequest struct {
	ID          string `json:"account_id"`
	LedgerID    string `json:"ledger_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Currency    string `json:"currency" binding:"required,len=3"`
	Description string `json:"description,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          string `json:"account_id"`
	LedgerID    string `json:"ledger_id"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toEntries(reqs []EntryRequest) []ledger.Entry {
	entries := make([]ledger.Entry, len(reqs))
	for i, r := range reqs {
		entries[i] = ledger.Entry{
			AccountID:     r.AccountID,
			Amount:        r.Amount,
			DecimalPlaces: r.DecimalPlaces,
			Currency:      r.Currency,
			Metadata:      r.Metadata,
		}
	}
	return entries
}

func mapEntriesToResponse(entries []ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = EntryResponse{
			AccountID:     e.AccountID,
			Amount:        e.Amount,
			DecimalPlaces: e.DecimalPlaces,
			DisplayAmount: e.DisplayAmount(),
			Currency:      e.Currency,
			Metadata:      e.Metadata,
		}
	}
	return out
}

func mapTransactionToResponse(txn *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		TxnID:       txn.TxnID,
		LedgerID:    txn.LedgerID,
		EffectiveAt: txn.EffectiveAt.UTC().Format(time.RFC3339Nano),
		Metadata:    txn.Metadata,
		Currencies:  txn.Currencies(),
		Entries:     mapEntriesToResponse(txn.Entries),
	}
}

func mapLedgerToResponse(l *account.Ledger) LedgerResponse {
	return LedgerResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:          acc.ID,
		LedgerID:    acc.LedgerID,
		Name:        acc.Name,
		Currency:    acc.Currency,
		Description: acc.Description,
		CreatedAt:   acc.CreatedAt.Format(time.RFC3339),
	}
}
