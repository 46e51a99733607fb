// Package ddl provides MySQL-specific helpers for generating DDL. A schema
// qualifier names a MySQL database.
package ddl

import (
	"strings"

	gddl "filingload/internal/ddl"
)

// Dialect renders MySQL DDL with `backtick` identifiers.
var Dialect = gddl.Dialect{Name: "mysql", Quote: QuoteIdent, MapType: MapType}

// MapType maps a logical type into a MySQL column type.
func MapType(lt gddl.LogicalType) string {
	switch lt {
	case gddl.Numeric:
		return "DOUBLE"
	case gddl.Date:
		return "DATE"
	default:
		return "LONGTEXT"
	}
}

// QuoteIdent quotes a single identifier segment with backticks.
func QuoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// BuildCreateTableSQL returns CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, Dialect, true)
}

// BuildDropTableSQL returns DROP TABLE IF EXISTS for fqn.
func BuildDropTableSQL(fqn string) string { return gddl.BuildDropTableSQL(fqn, Dialect) }

// BuildCreateSchemaSQL returns CREATE DATABASE IF NOT EXISTS, or "" for the
// empty schema.
func BuildCreateSchemaSQL(schema string) string {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		return ""
	}
	return "CREATE DATABASE IF NOT EXISTS " + QuoteIdent(schema) + ";"
}
