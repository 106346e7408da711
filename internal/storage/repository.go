// Package storage contains storage-agnostic contracts and utilities for the
// import job: the Repository interface, a kind-keyed backend factory, a
// batched channel loader, and a DDL bootstrap registry. Concrete backends
// (sqlite, postgres, mysql, mssql) live in subpackages and register themselves
// at init time; importing storage/all enables every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config is the backend-agnostic sink configuration handed to factories.
type Config struct {
	// Kind selects the registered backend ("sqlite", "postgres", ...).
	Kind string

	// DSN is the backend connection string.
	DSN string

	// Table is the destination table (optionally schema-qualified).
	Table string

	// Columns enumerates destination columns in insert order.
	Columns []string

	// KeyColumns identifies the logical record key, when applicable.
	KeyColumns []string
}

// Repository is the minimal sink contract the import pipeline needs.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned to the columns order and returns the
	// number of rows inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec executes an arbitrary SQL statement (typically DDL).
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connections.
	Close()
}

// Factory constructs a Repository from a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a storage kind. It is
// typically called from backend packages' init() functions.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository for cfg.Kind. Unregistered kinds return an error
// listing what is available.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered storage kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
