package ddl

// LogicalType is the backend-independent type of a column. Backends map it to
// a concrete SQL type.
type LogicalType string

const (
	Text    LogicalType = "text"
	Numeric LogicalType = "numeric"
	Date    LogicalType = "date"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Type: logical type, used when SQLType is empty
//   - SQLType: concrete SQL type (e.g., TEXT, DOUBLE PRECISION, DATE)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression
type ColumnDef struct {
	Name       string
	Type       LogicalType
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name, optionally schema-qualified ("schema.table"),
// and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Columns builds nullable column definitions for names, typed by typeOf.
// A nil typeOf makes every column Text.
func Columns(names []string, typeOf func(string) LogicalType) []ColumnDef {
	out := make([]ColumnDef, len(names))
	for i, n := range names {
		lt := Text
		if typeOf != nil {
			lt = typeOf(n)
		}
		out[i] = ColumnDef{Name: n, Type: lt, Nullable: true}
	}
	return out
}

// Names returns the column names in order.
func (t TableDef) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// AsText returns a copy of t with every column Text and SQLType cleared.
func (t TableDef) AsText() TableDef {
	cols := make([]ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		c.Type = Text
		c.SQLType = ""
		cols[i] = c
	}
	return TableDef{FQN: t.FQN, Columns: cols}
}
