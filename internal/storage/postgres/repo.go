// Package postgres implements a Postgres repository using pgx v5. Each write
// runs in one transaction: optional DROP, CREATE TABLE IF NOT EXISTS, then
// batched COPY into the target table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	gddl "filingload/internal/ddl"
	"filingload/internal/storage"
	pgddl "filingload/internal/storage/postgres/ddl"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, close, nil
}

// Write implements storage.Repository.
func (r *Repository) Write(ctx context.Context, req storage.WriteRequest) (int64, error) {
	if r.pool == nil {
		return 0, errors.New("postgres: repository not connected")
	}
	stmts, err := prepareStatements(req)
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	for _, s := range stmts {
		if _, err := tx.Exec(ctx, s); err != nil {
			return 0, fmt.Errorf("ddl %q: %w", firstLine(s), err)
		}
	}

	id := splitFQN(req.Table.FQN)
	n, err := storage.LoadBatches(ctx, req.Table.Names(), req.Rows, batchSize(req),
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return tx.CopyFrom(ctx, id, columns, pgx.CopyFromRows(rows))
		})
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", req.Table.FQN, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Debugf("postgres: table=%s mode=%s copied=%d", req.Table.FQN, req.Mode, n)
	return n, nil
}

// prepareStatements returns the DDL run before the COPY: schema creation,
// DROP for replace mode, then CREATE TABLE IF NOT EXISTS.
func prepareStatements(req storage.WriteRequest) ([]string, error) {
	create, err := pgddl.BuildCreateTableSQL(req.Table)
	if err != nil {
		return nil, err
	}
	var out []string
	if schema, _ := gddl.SplitFQN(req.Table.FQN); schema != "" {
		out = append(out, pgddl.BuildCreateSchemaSQL(schema))
	}
	if req.Mode == storage.Replace {
		out = append(out, pgddl.BuildDropTableSQL(req.Table.FQN))
	}
	return append(out, create), nil
}

func batchSize(req storage.WriteRequest) int {
	if req.BatchSize > 0 {
		return req.BatchSize
	}
	return storage.DefaultBatchSize
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			id = append(id, p)
		}
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
