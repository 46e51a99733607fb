// Package ddl provides SQLite-specific helpers for generating DDL.
//
// SQLite only knows attached databases, not schemas, so a schema-qualified
// name is flattened into a single table name by TableName.
package ddl

import (
	"strings"

	gddl "filingload/internal/ddl"
)

// Dialect renders SQLite DDL with double-quoted identifiers.
var Dialect = gddl.Dialect{Name: "sqlite", Quote: quoteIdent, MapType: MapType}

// MapType maps a logical type into a SQLite column type. Dates are stored as
// ISO-8601 text.
func MapType(lt gddl.LogicalType) string {
	switch lt {
	case gddl.Numeric:
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// TableName flattens "schema.table" into "schema_table". The main and temp
// databases are kept as qualifiers.
func TableName(fqn string) string {
	schema, table := gddl.SplitFQN(fqn)
	switch strings.ToLower(schema) {
	case "":
		return table
	case "main", "temp":
		return schema + "." + table
	}
	return strings.ReplaceAll(schema, ".", "_") + "_" + table
}

// BuildCreateTableSQL returns CREATE TABLE IF NOT EXISTS for t, with the name
// flattened by TableName.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	t.FQN = TableName(t.FQN)
	return gddl.BuildCreateTableSQL(t, Dialect, true)
}

// BuildDropTableSQL returns DROP TABLE IF EXISTS for fqn.
func BuildDropTableSQL(fqn string) string {
	return gddl.BuildDropTableSQL(TableName(fqn), Dialect)
}
