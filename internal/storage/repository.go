// Package storage contains the backend-agnostic repository contract, the
// backend registry and the bulk loader.
//
// Concrete backends (sqlite, postgres) live in subpackages and register
// themselves from init; import salesreport/internal/storage/all to enable
// every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Rows is the cursor returned by Repository.Query. *sql.Rows satisfies it.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Repository is the storage surface the pipeline needs: DDL, bulk append,
// read queries and teardown.
type Repository interface {
	// Exec runs a statement that returns no rows (typically DDL).
	Exec(ctx context.Context, sql string) error

	// CopyFrom appends rows (aligned to columns) to the configured table and
	// returns the number of rows inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Query runs a read query.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Close releases the connection.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Kind    string   // registered backend name, e.g. "sqlite"
	DSN     string   // backend connection string or database file path
	Table   string   // target table, optionally schema-qualified
	Columns []string // ordered destination columns
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend names.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
