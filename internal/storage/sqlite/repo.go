// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. It performs batched INSERTs inside a transaction; SQLite does
// not have a dedicated bulk-load API like Postgres COPY, but transactions
// keep performance acceptable for moderate volumes — the daily-loss exports
// this sink was built for are a few million rows at most.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"actdata/internal/config"
	"actdata/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := NewRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("sqlite", bootstrapDDL)
}

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is passed directly to database/sql; for example:
	//
	//	"file:aw.db?cache=shared&_fk=1"
	//	"aw.db"
	DSN   string
	Table string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// CopyFrom inserts the given rows into the configured table using a single
// transaction and a prepared INSERT statement. It returns the number of rows
// successfully inserted; len(row) must equal len(columns) for every row.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.cfg.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// wrappedRepo adapts *Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }

// bootstrapDDL creates the destination table from the configured fields.
func bootstrapDDL(ctx context.Context, repo storage.Repository, table string, fields []config.Field) error {
	if table == "" {
		return fmt.Errorf("sqlite: ddl: table must not be empty")
	}
	if len(fields) == 0 {
		return fmt.Errorf("sqlite: ddl: at least one field required")
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		col := f.Name + " " + sqlType(f.Type)
		if f.Required {
			col += " NOT NULL"
		}
		cols[i] = col
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n);", table, strings.Join(cols, ",\n    "))
	return repo.Exec(ctx, stmt)
}

// sqlType maps logical field types to SQLite storage classes. Dates are kept
// as TEXT, matching the export format; bools become 0/1 INTEGERs.
func sqlType(t string) string {
	switch strings.ToLower(t) {
	case "integer", "int":
		return "INTEGER"
	case "real", "float", "double":
		return "REAL"
	case "bool", "boolean":
		return "INTEGER"
	default:
		return "TEXT"
	}
}
