package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/double-entry-ledger/internal/api_gateway/service"
	"github.com/double-entry-ledger/internal/domain/account"
)

// AccountHandler handles HTTP requests for ledger and account records
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

func (h *AccountHandler) CreateLedger(c *gin.Context) {
	var req CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	l, err := h.accountService.CreateLedger(c.Request.Context(), req.ID, req.Name, req.Description)
	if err != nil {
		h.respondAccountError(c, err)
		return
	}

	RespondCreated(c, mapLedgerToResponse(l))
}

func (h *AccountHandler) GetLedger(c *gin.Context) {
	l, err := h.accountService.GetLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondAccountError(c, err)
		return
	}
	RespondOK(c, mapLedgerToResponse(l))
}

// CreateAccount rejects accounts whose ledger does not exist with 422
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), req.ID, req.LedgerID, req.Name, req.Currency, req.Description)
	if err != nil {
		var ledgerNotFound account.ErrLedgerNotFound
		if errors.As(err, &ledgerNotFound) {
			RespondUnprocessable(c, "UNKNOWN_LEDGER", err.Error())
			return
		}
		h.respondAccountError(c, err)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	acc, err := h.accountService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondAccountError(c, err)
		return
	}
	RespondOK(c, mapAccountToResponse(acc))
}

func (h *AccountHandler) respondAccountError(c *gin.Context, err error) {
	var (
		ledgerNotFound  account.ErrLedgerNotFound
		accountNotFound account.ErrAccountNotFound
		dupLedger       account.ErrDuplicateLedger
		dupAccount      account.ErrDuplicateAccount
	)

	switch {
	case errors.As(err, &ledgerNotFound):
		RespondNotFound(c, "LEDGER_NOT_FOUND", err.Error())
	case errors.As(err, &accountNotFound):
		RespondNotFound(c, "ACCOUNT_NOT_FOUND", err.Error())
	case errors.As(err, &dupLedger):
		RespondConflict(c, "DUPLICATE_LEDGER", err.Error())
	case errors.As(err, &dupAccount):
		RespondConflict(c, "DUPLICATE_ACCOUNT", err.Error())
	case errors.Is(err, account.ErrEmptyName),
		errors.Is(err, account.ErrEmptyLedgerID),
		errors.Is(err, account.ErrInvalidCurrencyFormat):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Account operation failed", "error", err)
		_ = c.Error(err)
		RespondInternalError(c)
	}
}
