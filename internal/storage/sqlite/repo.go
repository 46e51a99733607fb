// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. Each write runs in one transaction with a prepared INSERT;
// SQLite has no bulk-load API like Postgres COPY, but transactions keep
// performance acceptable for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"filingload/internal/storage"
	sqliteddl "filingload/internal/storage/sqlite/ddl"
)

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
	// One connection: ":memory:" databases are per connection and SQLite
	// allows a single writer anyway.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// Write implements storage.Repository. DDL and inserts share the transaction,
// so a failed attempt leaves the previous table in place.
func (r *Repository) Write(ctx context.Context, req storage.WriteRequest) (int64, error) {
	if r.db == nil {
		return 0, errors.New("sqlite: repository not connected")
	}
	create, err := sqliteddl.BuildCreateTableSQL(req.Table)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if req.Mode == storage.Replace {
		if _, err := tx.ExecContext(ctx, sqliteddl.BuildDropTableSQL(req.Table.FQN)); err != nil {
			return 0, fmt.Errorf("sqlite: drop: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("sqlite: create: %w", err)
	}

	columns := req.Table.Names()
	stmt, err := tx.PrepareContext(ctx, insertSQL(req.Table.FQN, columns))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	size := req.BatchSize
	if size <= 0 {
		size = storage.DefaultBatchSize
	}
	n, err := storage.LoadBatches(ctx, columns, req.Rows, size,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			var inserted int64
			for _, row := range rows {
				if len(row) != len(columns) {
					return inserted, fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(columns))
				}
				if _, err := stmt.ExecContext(ctx, bindValues(row)...); err != nil {
					return inserted, fmt.Errorf("sqlite: insert: %w", err)
				}
				inserted++
			}
			return inserted, nil
		})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	log.Debugf("sqlite: table=%s mode=%s inserted=%d", req.Table.FQN, req.Mode, n)
	return n, nil
}

// insertSQL builds INSERT INTO <table> (<cols>) VALUES (?, ?, ...).
func insertSQL(fqn string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		sqliteddl.Dialect.FQN(sqliteddl.TableName(fqn)),
		strings.Join(sqliteddl.Dialect.Idents(columns), ", "),
		placeholders,
	)
}

// bindValues stores dates as ISO-8601 text.
func bindValues(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			out[i] = t.Format(time.DateOnly)
			continue
		}
		out[i] = v
	}
	return out
}
