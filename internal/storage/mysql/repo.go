// Package mysql implements a MySQL-backed storage.Repository using
// database/sql with the go-sql-driver. Rows are loaded with multi-row
// INSERT statements; LOAD DATA LOCAL INFILE is deliberately not used
// because it requires server-side opt-in that managed instances often
// disable.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"actdata/internal/config"
	"actdata/internal/storage"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := NewRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("mysql", bootstrapDDL)
}

// Config holds MySQL repository configuration.
type Config struct {
	// DSN in go-sql-driver form, for example:
	//
	//	"user:pass@tcp(localhost:3306)/actuarial?parseTime=true"
	DSN   string
	Table string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a MySQL connection pool and verifies connectivity.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(8)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// maxInsertRows bounds the number of rows per INSERT so the statement stays
// well under max_allowed_packet on default server configs.
const maxInsertRows = 500

// CopyFrom inserts rows using multi-row INSERT statements inside a single
// transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	rowTmpl := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", r.cfg.Table, strings.Join(columns, ", "))

	var inserted int64
	for start := 0; start < len(rows); start += maxInsertRows {
		end := start + maxInsertRows
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		values := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if len(row) != len(columns) {
				_ = tx.Rollback()
				return inserted, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
			}
			values[i] = rowTmpl
			args = append(args, row...)
		}

		if _, err := tx.ExecContext(ctx, prefix+strings.Join(values, ","), args...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("mysql: insert: %w", err)
		}
		inserted += int64(len(chunk))
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }

func bootstrapDDL(ctx context.Context, repo storage.Repository, table string, fields []config.Field) error {
	if table == "" {
		return fmt.Errorf("mysql: ddl: table must not be empty")
	}
	if len(fields) == 0 {
		return fmt.Errorf("mysql: ddl: at least one field required")
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

func sqlType(t string) string {
	switch strings.ToLower(t) {
	case "integer", "int":
		return "BIGINT"
	case "real", "float", "double":
		return "DOUBLE"
	case "bool", "boolean":
		return "TINYINT(1)"
	case "date":
		return "DATE"
	default:
		return "TEXT"
	}
}
