package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/double-entry-ledger/internal/api_gateway/service"
	"github.com/double-entry-ledger/internal/domain/ledger"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create validates and records a transaction
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), ledger.Draft{
		TxnID:       req.TxnID,
		LedgerID:    req.LedgerID,
		EffectiveAt: req.EffectiveAt,
		Metadata:    req.Metadata,
		Entries:     toEntries(req.Entries),
	})
	if err != nil {
		h.respondTransactionError(c, req.TxnID, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// GetByID returns the stored transaction or 404
func (h *TransactionHandler) GetByID(c *gin.Context) {
	txnID := c.Param("id")

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), txnID)
	if err != nil {
		h.logger.Error("Failed to get transaction", "txn_id", txnID, "error", err)
		_ = c.Error(err)
		RespondInternalError(c)
		return
	}
	if txn == nil {
		RespondNotFound(c, "TRANSACTION_NOT_FOUND", "Transaction not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// GetEntries returns the entry index; unknown IDs give an empty list
func (h *TransactionHandler) GetEntries(c *gin.Context) {
	txnID := c.Param("id")

	entries, err := h.transactionService.GetEntries(c.Request.Context(), txnID)
	if err != nil {
		h.logger.Error("Failed to get entries", "txn_id", txnID, "error", err)
		_ = c.Error(err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, EntryListResponse{TxnID: txnID, Entries: mapEntriesToResponse(entries)})
}

// AppendEntries adds balanced legs to a stored transaction
func (h *TransactionHandler) AppendEntries(c *gin.Context) {
	txnID := c.Param("id")

	var req AppendEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "txn_id", txnID, "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.transactionService.AppendEntries(c.Request.Context(), txnID, toEntries(req.Entries))
	if err != nil {
		h.respondTransactionError(c, txnID, err)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// respondTransactionError maps ledger errors to 422, 409 and 404; anything else is a 500
func (h *TransactionHandler) respondTransactionError(c *gin.Context, txnID string, err error) {
	var validationErr ledger.ValidationError
	var notFound ledger.ErrTransactionNotFound
	var conflict ledger.ErrConcurrentUpdate

	switch {
	case errors.As(err, &validationErr):
		RespondUnprocessable(c, strings.ToUpper(string(validationErr.Reason)), validationErr.Error())
	case errors.Is(err, ledger.ErrDuplicateTransaction{}):
		RespondConflict(c, "DUPLICATE_TRANSACTION", err.Error())
	case errors.As(err, &notFound):
		RespondNotFound(c, "TRANSACTION_NOT_FOUND", err.Error())
	case errors.As(err, &conflict):
		RespondConflict(c, "CONCURRENT_UPDATE", err.Error())
	default:
		h.logger.Error("Failed to record transaction", "txn_id", txnID, "error", err)
		_ = c.Error(err)
		RespondInternalError(c)
	}
}
