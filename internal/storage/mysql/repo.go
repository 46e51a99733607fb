// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and multi-row INSERT statements. MySQL commits DDL
// implicitly, so only the inserts of a write share its transaction.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"

	gddl "filingload/internal/ddl"
	"filingload/internal/storage"
	myddl "filingload/internal/storage/mysql/ddl"
)

// maxPlaceholders is MySQL's limit on bind parameters per statement.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration.
type Config struct {
	DSN string // go-sql-driver DSN, e.g. user:pass@tcp(host:3306)/db
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository validates the DSN, opens a pool and returns a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

// Write implements storage.Repository.
func (r *Repository) Write(ctx context.Context, req storage.WriteRequest) (int64, error) {
	if r.db == nil {
		return 0, errors.New("mysql: repository not connected")
	}
	stmts, err := prepareStatements(req)
	if err != nil {
		return 0, err
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return 0, fmt.Errorf("ddl: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	columns := req.Table.Names()
	size := req.BatchSize
	if size <= 0 {
		size = storage.DefaultBatchSize
	}
	size = storage.MaxRowsPerStatement(size, len(columns), maxPlaceholders)

	n, err := storage.LoadBatches(ctx, columns, req.Rows, size,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			query, args := insertSQL(req.Table.FQN, columns, rows)
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		})
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", req.Table.FQN, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Debugf("mysql: table=%s mode=%s inserted=%d", req.Table.FQN, req.Mode, n)
	return n, nil
}

func prepareStatements(req storage.WriteRequest) ([]string, error) {
	create, err := myddl.BuildCreateTableSQL(req.Table)
	if err != nil {
		return nil, err
	}
	var out []string
	if schema, _ := gddl.SplitFQN(req.Table.FQN); schema != "" {
		out = append(out, myddl.BuildCreateSchemaSQL(schema))
	}
	if req.Mode == storage.Replace {
		out = append(out, myddl.BuildDropTableSQL(req.Table.FQN))
	}
	return append(out, create), nil
}

// insertSQL builds one multi-row INSERT and its flattened arguments.
func insertSQL(fqn string, columns []string, rows [][]any) (string, []any) {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		myddl.Dialect.FQN(fqn), strings.Join(myddl.Dialect.Idents(columns), ","))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args
}
