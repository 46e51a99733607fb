package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlServerError matches go-mssqldb's mssql.Error without importing it.
type sqlServerError interface {
	SQLErrorNumber() int32
	SQLErrorMessage() string
}

// Describe renders a write error for logs. Postgres errors show their detail
// and SQLSTATE; SQL Server errors show their number.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := pgErr.Message
		if pgErr.Detail != "" {
			msg = pgErr.Detail
		}
		if pgErr.ColumnName != "" {
			msg = fmt.Sprintf("%s (column %s)", msg, pgErr.ColumnName)
		}
		return fmt.Sprintf("%s (%s)", msg, pgErr.SQLState())
	}
	var msErr sqlServerError
	if errors.As(err, &msErr) {
		return fmt.Sprintf("%s (mssql %d)", msErr.SQLErrorMessage(), msErr.SQLErrorNumber())
	}
	return err.Error()
}
