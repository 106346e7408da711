package storage

import (
	"context"
	"fmt"
	"sync"

	"actdata/internal/config"
)

// DDLBootstrapper is a backend-specific function that builds a CREATE TABLE
// statement from the import job's configured fields and applies it via
// repo.Exec. Backends register their implementation for a given storage kind
// at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, fields []config.Field) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given storage
// kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for the storage kind and invokes
// it. Callers do not need to know which backend they are using.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, fields []config.Field) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL bootstrapper registered for kind %q", kind)
	}
	return fn(ctx, repo, table, fields)
}
