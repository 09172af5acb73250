package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/double-entry-ledger/internal/domain/shared"
)

// WorkerPoolProcessingService bounds how many requests are processed at once
type WorkerPoolProcessingService struct {
	baseService ProcessingService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProcessingService(
	baseService ProcessingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProcessingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ProcessTransaction runs the request on a pool worker and waits for its result
func (s *WorkerPoolProcessingService) ProcessTransaction(ctx context.Context, request *shared.TransactionRequest) error {
	logger := s.logger
	if request.TraceID != "" {
		logger = s.logger.With("trace_id", request.TraceID)
	}

	logger.Debug("Submitting transaction to worker pool", "txn_id", request.TxnID)

	resultChan := make(chan error, 1)
	requestCopy := *request

	err := s.pool.Submit(func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Panic while processing transaction", "txn_id", requestCopy.TxnID, "panic", p)
				resultChan <- fmt.Errorf("panic while processing transaction %s: %v", requestCopy.TxnID, p)
			}
		}()
		resultChan <- s.baseService.ProcessTransaction(ctx, &requestCopy)
	})
	if err != nil {
		logger.Error("Failed to submit transaction to worker pool", "txn_id", request.TxnID, "error", err)
		return err
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}
