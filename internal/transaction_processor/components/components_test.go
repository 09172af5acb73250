package components

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/domain/shared"
	"github.com/double-entry-ledger/internal/platform/messaging/producers"
)

type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, value []byte, reason string) error {
	args := m.Called(ctx, key, value, reason)
	return args.Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	return m.Called().Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishTransactionRecorded(ctx context.Context, event *shared.TransactionRecordedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func balancedRequest() *shared.TransactionRequest {
	return &shared.TransactionRequest{
		TxnID:    "txn_42",
		LedgerID: "main",
		TraceID:  "trace-42",
		Entries: []ledger.Entry{
			{AccountID: "cash", Amount: 2500, DecimalPlaces: 2, Currency: "EUR"},
			{AccountID: "sales", Amount: -2500, DecimalPlaces: 2, Currency: "EUR"},
		},
	}
}

func TestTransactionValidator_Validate(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	validator := NewTransactionValidator(
		ledger.NewValidator(ledger.WithClock(func() time.Time { return fixed })),
		newTestLogger(),
	)

	t.Run("balanced request", func(t *testing.T) {
		txn, err := validator.Validate(context.Background(), balancedRequest())
		require.NoError(t, err)
		assert.Equal(t, "txn_42", txn.TxnID)
		assert.Equal(t, fixed, txn.EffectiveAt)
		assert.Len(t, txn.Entries, 2)
	})

	t.Run("unbalanced request", func(t *testing.T) {
		req := balancedRequest()
		req.Entries[1].Amount = -2400

		txn, err := validator.Validate(context.Background(), req)
		assert.Nil(t, txn)
		assert.ErrorIs(t, err, ledger.ValidationError{Reason: ledger.ReasonUnbalancedCurrency})
	})

	t.Run("custom prefix", func(t *testing.T) {
		prefixed := NewTransactionValidator(ledger.NewValidator(ledger.WithTxnIDPrefix("tx-")), newTestLogger())
		_, err := prefixed.Validate(context.Background(), balancedRequest())
		assert.ErrorIs(t, err, ledger.ValidationError{Reason: ledger.ReasonMalformedID})
	})
}

func TestFailureRecorder_RecordFailure(t *testing.T) {
	ctx := context.Background()
	req := balancedRequest()
	expectedValue, err := json.Marshal(req)
	require.NoError(t, err)

	t.Run("publishes to DLQ", func(t *testing.T) {
		dlq := &MockDeadLetterPublisher{}
		dlq.On("PublishToDLQ", ctx, "txn_42", expectedValue, "UNBALANCED_CURRENCY").Return(nil).Once()

		recorder := NewFailureRecorder(dlq, newTestLogger())
		require.NoError(t, recorder.RecordFailure(ctx, req, shared.FailureReason("UNBALANCED_CURRENCY")))
		dlq.AssertExpectations(t)
	})

	t.Run("DLQ disabled drops the request", func(t *testing.T) {
		dlq := &MockDeadLetterPublisher{}
		dlq.On("PublishToDLQ", ctx, "txn_42", mock.Anything, mock.Anything).Return(producers.ErrDLQDisabled).Once()

		recorder := NewFailureRecorder(dlq, newTestLogger())
		assert.NoError(t, recorder.RecordFailure(ctx, req, shared.FailureReasonDuplicateTransaction))
		dlq.AssertExpectations(t)
	})

	t.Run("DLQ error is returned", func(t *testing.T) {
		dlq := &MockDeadLetterPublisher{}
		publishErr := errors.New("broker unavailable")
		dlq.On("PublishToDLQ", ctx, "txn_42", mock.Anything, mock.Anything).Return(publishErr).Once()

		recorder := NewFailureRecorder(dlq, newTestLogger())
		assert.ErrorIs(t, recorder.RecordFailure(ctx, req, shared.FailureReasonDuplicateTransaction), publishErr)
		dlq.AssertExpectations(t)
	})
}

func TestEventNotifier_NotifyRecorded(t *testing.T) {
	ctx := context.Background()
	txn := &ledger.Transaction{
		TxnID:       "txn_42",
		LedgerID:    "main",
		EffectiveAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Entries:     balancedRequest().Entries,
	}

	t.Run("nil publisher is a no-op", func(t *testing.T) {
		notifier := NewEventNotifier(nil, newTestLogger())
		assert.NotPanics(t, func() { notifier.NotifyRecorded(ctx, txn, "trace-42") })
	})

	t.Run("publishes event", func(t *testing.T) {
		publisher := &MockEventPublisher{}
		publisher.On("PublishTransactionRecorded", ctx, mock.MatchedBy(func(e *shared.TransactionRecordedEvent) bool {
			return e.TxnID == "txn_42" &&
				e.Source == shared.EventSourceProcessor &&
				e.TraceID == "trace-42" &&
				len(e.Entries) == 2 &&
				e.Entries[0].DisplayAmount == "25.00"
		})).Return(nil).Once()

		NewEventNotifier(publisher, newTestLogger()).NotifyRecorded(ctx, txn, "trace-42")
		publisher.AssertExpectations(t)
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		publisher := &MockEventPublisher{}
		publisher.On("PublishTransactionRecorded", ctx, mock.Anything).Return(errors.New("kafka down")).Once()

		assert.NotPanics(t, func() {
			NewEventNotifier(publisher, newTestLogger()).NotifyRecorded(ctx, txn, "trace-42")
		})
		publisher.AssertExpectations(t)
	})
}
