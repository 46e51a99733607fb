// Package ddl provides MSSQL-specific helpers for generating DDL.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so statements are wrapped in
// OBJECT_ID / SCHEMA_ID guards.
package ddl

import (
	"fmt"
	"strings"

	gddl "filingload/internal/ddl"
)

// Dialect renders SQL Server DDL with [bracket] identifiers.
var Dialect = gddl.Dialect{Name: "mssql", Quote: QuoteIdent, MapType: MapType}

// MapType maps a logical type into a SQL Server type.
func MapType(lt gddl.LogicalType) string {
	switch lt {
	case gddl.Numeric:
		return "FLOAT"
	case gddl.Date:
		return "DATE"
	default:
		return "NVARCHAR(MAX)"
	}
}

// QuoteIdent quotes a single identifier segment using bracket syntax,
// escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// nstring renders s as an N'...' literal.
func nstring(s string) string { return "N'" + strings.ReplaceAll(s, "'", "''") + "'" }

// BuildCreateTableSQL returns a T-SQL script that creates t if it does not
// already exist:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE,
//	    ...
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.BuildColumnDefs(t, Dialect)
	if err != nil {
		return "", err
	}
	fqn := Dialect.FQN(t.FQN)
	return fmt.Sprintf(
		"IF OBJECT_ID(%s, N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		nstring(fqn),
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}

// BuildDropTableSQL drops fqn when it exists.
func BuildDropTableSQL(fqn string) string {
	q := Dialect.FQN(fqn)
	return fmt.Sprintf("IF OBJECT_ID(%s, N'U') IS NOT NULL DROP TABLE %s;", nstring(q), q)
}

// BuildCreateSchemaSQL creates schema when missing, or returns "" for the
// empty schema.
func BuildCreateSchemaSQL(schema string) string {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		return ""
	}
	return fmt.Sprintf("IF SCHEMA_ID(%s) IS NULL EXEC(%s);",
		nstring(schema), nstring("CREATE SCHEMA "+QuoteIdent(schema)))
}
