// This adapter wires the Postgres backend into the storage-agnostic factory by
// registering a constructor and a table replacer at init time. Callers obtain
// a Repository via storage.New(...) without importing this package directly.
package postgres

import (
	"context"
	"fmt"

	"salesreport/internal/storage"
	pgddl "salesreport/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Repository by delegating to the concrete
// *postgres.Repository while providing a Close method that calls the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func() error
}

// Ensure wrappedRepo satisfies storage.Repository at compile time.
var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close. Later calls are no-ops.
func (w *wrappedRepo) Close() error {
	if w.closeFn == nil {
		return nil
	}
	fn := w.closeFn
	w.closeFn = nil
	return fn()
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres", func(ctx context.Context, repo storage.Repository, table string) error {
		if err := pgddl.ReplaceSalesTable(ctx, repo, table); err != nil {
			return fmt.Errorf("apply DDL: %w", err)
		}
		return nil
	})
}
