// Package data selects and opens the storage backend named in configuration.
package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/double-entry-ledger/internal/config"
	"github.com/double-entry-ledger/internal/data/memory"
	mongostore "github.com/double-entry-ledger/internal/data/mongo"
	"github.com/double-entry-ledger/internal/data/postgres"
	"github.com/double-entry-ledger/internal/domain/account"
	"github.com/double-entry-ledger/internal/domain/ledger"
	"github.com/double-entry-ledger/internal/platform/persistence"
)

// UnsupportedBackendError is returned by Open for an unknown STORAGE_BACKEND
type UnsupportedBackendError struct {
	Backend string
}

func (e UnsupportedBackendError) Error() string {
	return fmt.Sprintf("unsupported storage backend %q", e.Backend)
}

// Repositories bundles the repositories of one backend with the connections they use
type Repositories struct {
	Backend  string
	Ledger   ledger.Repository
	Accounts account.Repository

	closers []func(ctx context.Context) error
}

// Open connects to the configured backend and builds its repositories
func Open(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*Repositories, error) {
	policy, err := ledger.ParseDuplicatePolicy(cfg.Ledger.DuplicatePolicy)
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case config.BackendInMemory:
		return &Repositories{
			Backend:  config.BackendInMemory,
			Ledger:   memory.NewLedgerRepository(logger, policy),
			Accounts: memory.NewAccountRepository(),
		}, nil

	case config.BackendPostgres:
		db, err := persistence.NewPostgresDB(ctx, logger, &cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres backend: %w", err)
		}
		return &Repositories{
			Backend:  config.BackendPostgres,
			Ledger:   postgres.NewLedgerRepository(logger, db, policy),
			Accounts: postgres.NewAccountRepository(logger, db),
			closers: []func(context.Context) error{func(context.Context) error {
				db.Close()
				return nil
			}},
		}, nil

	case config.BackendMongoDB:
		db, err := persistence.NewMongoDB(ctx, logger, &cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open mongodb backend: %w", err)
		}
		return &Repositories{
			Backend:  config.BackendMongoDB,
			Ledger:   mongostore.NewLedgerRepository(logger, db.Database(), policy),
			Accounts: mongostore.NewAccountRepository(logger, db.Database()),
			closers:  []func(context.Context) error{db.Close},
		}, nil

	default:
		return nil, UnsupportedBackendError{Backend: cfg.Storage.Backend}
	}
}

// Close releases every connection opened by Open
func (r *Repositories) Close(ctx context.Context) error {
	var errs []error
	for _, c := range r.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
