// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. Each write runs in one transaction: guarded
// schema and table DDL, then one bulk copy per batch.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
	log "github.com/sirupsen/logrus"

	gddl "filingload/internal/ddl"
	"filingload/internal/storage"
	msddl "filingload/internal/storage/mssql/ddl"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, close, nil
}

// Write implements storage.Repository.
func (r *Repository) Write(ctx context.Context, req storage.WriteRequest) (int64, error) {
	if r.db == nil {
		return 0, errors.New("mssql: repository not connected")
	}
	stmts, err := prepareStatements(req)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			rollback()
			return 0, fmt.Errorf("ddl: %w", err)
		}
	}

	table := msddl.Dialect.FQN(req.Table.FQN)
	size := req.BatchSize
	if size <= 0 {
		size = storage.DefaultBatchSize
	}
	n, err := storage.LoadBatches(ctx, req.Table.Names(), req.Rows, size,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return bulkCopy(ctx, tx, table, columns, rows)
		})
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk copy into %s: %w", req.Table.FQN, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Debugf("mssql: table=%s mode=%s copied=%d", req.Table.FQN, req.Mode, n)
	return n, nil
}

// bulkCopy sends one batch through a CopyIn statement and flushes it.
func bulkCopy(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	return res.RowsAffected()
}

// prepareStatements returns the guarded DDL run before the bulk copy.
func prepareStatements(req storage.WriteRequest) ([]string, error) {
	create, err := msddl.BuildCreateTableSQL(req.Table)
	if err != nil {
		return nil, err
	}
	var out []string
	if schema, _ := gddl.SplitFQN(req.Table.FQN); schema != "" {
		out = append(out, msddl.BuildCreateSchemaSQL(schema))
	}
	if req.Mode == storage.Replace {
		out = append(out, msddl.BuildDropTableSQL(req.Table.FQN))
	}
	return append(out, create), nil
}
