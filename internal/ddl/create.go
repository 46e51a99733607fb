// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE TABLE statements from that model.
//
// Dialects supply identifier quoting and the mapping from logical column
// types to SQL types. Backend packages (e.g., internal/storage/postgres/ddl)
// define their Dialect and wrap BuildCreateTableSQL where the dialect needs
// more than IF NOT EXISTS.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures the per-backend parts of DDL rendering.
type Dialect struct {
	Name string
	// Quote quotes a single identifier segment. Nil emits names verbatim.
	Quote func(string) string
	// MapType maps a logical type to a SQL type. Nil maps everything to TEXT.
	MapType func(LogicalType) string
}

// Ident quotes one identifier.
func (d Dialect) Ident(id string) string {
	if d.Quote == nil {
		return id
	}
	return d.Quote(id)
}

// FQN quotes a possibly schema-qualified name segment by segment. Empty
// segments are skipped.
func (d Dialect) FQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.Ident(p))
	}
	return strings.Join(out, ".")
}

// Idents quotes every name.
func (d Dialect) Idents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.Ident(n)
	}
	return out
}

// SQLType returns c.SQLType, or the dialect mapping of c.Type when unset.
func (d Dialect) SQLType(c ColumnDef) string {
	if s := strings.TrimSpace(c.SQLType); s != "" {
		return s
	}
	if d.MapType == nil {
		return "TEXT"
	}
	lt := c.Type
	if lt == "" {
		lt = Text
	}
	return d.MapType(lt)
}

// SplitFQN splits "schema.table" into its parts. A name without a dot has an
// empty schema.
func SplitFQN(fqn string) (schema, table string) {
	fqn = strings.TrimSpace(fqn)
	if i := strings.LastIndex(fqn, "."); i >= 0 {
		return strings.TrimSpace(fqn[:i]), strings.TrimSpace(fqn[i+1:])
	}
	return "", fqn
}

// BuildColumnDefs renders the column list of a CREATE TABLE statement, one
// entry per column plus an optional PRIMARY KEY clause.
//
// Each column is rendered as:
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
func BuildColumnDefs(t TableDef, d Dialect) ([]string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return nil, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := d.SQLType(c)
		if typ == "" {
			return nil, fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(d.Ident(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			// Default is emitted as raw SQL expression.
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.Ident(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return cols, nil
}

// BuildCreateTableSQL renders a CREATE TABLE statement:
//
//	CREATE TABLE [IF NOT EXISTS] <FQN> (
//	  <col1-def>,
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
func BuildCreateTableSQL(t TableDef, d Dialect, ifNotExists bool) (string, error) {
	cols, err := BuildColumnDefs(t, d)
	if err != nil {
		return "", err
	}
	guard := ""
	if ifNotExists {
		guard = "IF NOT EXISTS "
	}
	return fmt.Sprintf(
		"CREATE TABLE %s%s (\n  %s\n);",
		guard,
		d.FQN(t.FQN),
		strings.Join(cols, ",\n  "),
	), nil
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS for fqn.
func BuildDropTableSQL(fqn string, d Dialect) string {
	return "DROP TABLE IF EXISTS " + d.FQN(fqn) + ";"
}
