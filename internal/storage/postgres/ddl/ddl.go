// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "filingload/internal/ddl"
)

// Dialect renders Postgres DDL: double-quoted identifiers and CREATE TABLE
// IF NOT EXISTS.
var Dialect = gddl.Dialect{Name: "postgres", Quote: QuoteIdent, MapType: MapType}

// MapType maps a logical type into a Postgres SQL type.
//
//	numeric -> DOUBLE PRECISION
//	date    -> DATE
//	text    -> TEXT
func MapType(lt gddl.LogicalType) string {
	switch lt {
	case gddl.Numeric:
		return "DOUBLE PRECISION"
	case gddl.Date:
		return "DATE"
	default:
		return "TEXT"
	}
}

// QuoteIdent safely quotes a single identifier segment for Postgres.
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// BuildCreateTableSQL returns CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, Dialect, true)
}

// BuildDropTableSQL returns DROP TABLE IF EXISTS for fqn.
func BuildDropTableSQL(fqn string) string { return gddl.BuildDropTableSQL(fqn, Dialect) }

// BuildCreateSchemaSQL returns CREATE SCHEMA IF NOT EXISTS, or "" for the
// empty schema.
func BuildCreateSchemaSQL(schema string) string {
	if strings.TrimSpace(schema) == "" {
		return ""
	}
	return "CREATE SCHEMA IF NOT EXISTS " + QuoteIdent(strings.TrimSpace(schema)) + ";"
}
