package storage

import (
	"context"
	"fmt"
	"sync"
)

// TableReplacer is a backend-specific function that drops the named table if
// it exists and creates it again with the fixed sales schema, using the
// backend's type mapping.
type TableReplacer func(ctx context.Context, repo Repository, table string) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]TableReplacer{}
)

// RegisterDDL registers (or replaces) the TableReplacer for kind. It is
// typically called from backend packages' init() functions.
func RegisterDDL(kind string, fn TableReplacer) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// ReplaceTable drops and recreates table through the replacer registered for
// kind. Any rows from earlier runs are discarded.
func ReplaceTable(ctx context.Context, kind string, repo Repository, table string) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, table)
}
