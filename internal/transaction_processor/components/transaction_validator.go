package components

import (
	"context"
	"log/slog"

	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/domain/shared"
	"github.com/double-entry-ledger/internal/transaction_processor/service"
)

type TransactionValidatorImpl struct {
	validator *ledger.Validator
	logger    *slog.Logger
}

func NewTransactionValidator(validator *ledger.Validator, logger *slog.Logger) service.TransactionValidator {
	return &TransactionValidatorImpl{
		validator: validator,
		logger:    logger,
	}
}

// Validate runs the request through the balance rules. Errors are always ledger.ValidationError.
func (v *TransactionValidatorImpl) Validate(ctx context.Context, request *shared.TransactionRequest) (*ledger.Transaction, error) {
	txn, err := v.validator.Validate(request.ToDraft())
	if err != nil {
		v.logger.Info("Transaction request failed validation",
			"txn_id", request.TxnID,
			"trace_id", request.TraceID,
			"error", err,
		)
		return nil, err
	}
	return txn, nil
}
