package ddl

import (
	"testing"

	gddl "filingload/internal/ddl"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lt   gddl.LogicalType
		want string
	}{
		{gddl.Numeric, "DOUBLE PRECISION"},
		{gddl.Date, "DATE"},
		{gddl.Text, "TEXT"},
		{"", "TEXT"},
	}
	for _, tt := range tests {
		if got := MapType(tt.lt); got != tt.want {
			t.Errorf("MapType(%q) = %q, want %q", tt.lt, got, tt.want)
		}
	}
}

func TestStatements(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "formc_data.formc_submission",
		Columns: []gddl.ColumnDef{
			{Name: "submission_id", Type: gddl.Text, Nullable: true},
			{Name: "total_amount", Type: gddl.Numeric, Nullable: true},
		},
	}
	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"formc_data\".\"formc_submission\" (\n" +
		"  \"submission_id\" TEXT,\n  \"total_amount\" DOUBLE PRECISION\n);"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	if got := BuildDropTableSQL(def.FQN); got != `DROP TABLE IF EXISTS "formc_data"."formc_submission";` {
		t.Fatalf("drop = %s", got)
	}
	if got := BuildCreateSchemaSQL("formc_data"); got != `CREATE SCHEMA IF NOT EXISTS "formc_data";` {
		t.Fatalf("schema = %s", got)
	}
	if BuildCreateSchemaSQL(" ") != "" {
		t.Fatalf("blank schema should render nothing")
	}
}
