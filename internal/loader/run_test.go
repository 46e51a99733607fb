package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"filingload/internal/config"
	sqliteddl "filingload/internal/storage/sqlite/ddl"
)

// formcConfig returns the stock config rooted at dir with small batches.
func formcConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.SourceDir = dir
	cfg.Job = "test"
	cfg.Batch = config.Batch{Size: 2, FallbackSize: 1}
	return cfg
}

/*
TestRun_StopsAtFirstFailure loads the four Form C files where the second one
has a stray tab. The first table is written, the run stops at the second and
the pre-existing third and fourth tables keep their contents.
*/
func TestRun_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "FORM_C_SUBMISSION.tsv", "ACCESSION_NUMBER\tFILING_DATE\n0001-24-1\t2024-01-05\n0001-24-2\t2024-02-05\n0001-24-3\t2024-03-05\n")
	writeFile(t, dir, "FORM_C_ISSUER_INFORMATION.tsv", "ACCESSION_NUMBER\tNAMEOFISSUER\n0001-24-1\tAcme\textra\n")
	writeFile(t, dir, "FORM_C_DISCLOSURE.tsv", "ACCESSION_NUMBER\tTOTALASSETMOSTRECENTFISCALYEAR\n0001-24-1\t10\n")
	writeFile(t, dir, "FORM_C_SIGNATURE.tsv", "ACCESSION_NUMBER\tSIGNATURE_DATE\n0001-24-1\t2024-01-05\n")

	repo, db := openSQLite(t)
	for _, tbl := range []string{"formc_data.formc_disclosure", "formc_data.formc_signature"} {
		name := sqliteddl.TableName(tbl)
		if _, err := db.Exec(`CREATE TABLE "` + name + `" (sentinel TEXT)`); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := db.Exec(`INSERT INTO "` + name + `" VALUES ('keep')`); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	sum, err := Run(context.Background(), formcConfig(dir), repo)
	if !errors.Is(err, ErrMalformedRows) {
		t.Fatalf("Run error = %v, want ErrMalformedRows", err)
	}
	if _, perr := uuid.Parse(sum.RunID); perr != nil {
		t.Fatalf("RunID %q is not a uuid: %v", sum.RunID, perr)
	}
	if len(sum.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(sum.Results))
	}
	failed, ok := sum.Failed()
	if !ok || failed.Table != "formc_data.formc_issuer_information" {
		t.Fatalf("Failed() = %+v, %v", failed, ok)
	}
	if sum.Results[0].Status != StatusSuccess || sum.Results[0].Written != 3 || sum.Written() != 3 {
		t.Fatalf("first result = %+v", sum.Results[0])
	}

	var n int
	sub := sqliteddl.TableName("formc_data.formc_submission")
	if err := db.QueryRow(`SELECT count(*) FROM "` + sub + `"`).Scan(&n); err != nil || n != 3 {
		t.Fatalf("%s rows = %d, %v; want 3", sub, n, err)
	}
	issuer := sqliteddl.TableName("formc_data.formc_issuer_information")
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, issuer).Scan(&n); err != nil || n != 0 {
		t.Fatalf("%s exists = %d, %v; want absent", issuer, n, err)
	}
	for _, tbl := range []string{"formc_data.formc_disclosure", "formc_data.formc_signature"} {
		var v string
		name := sqliteddl.TableName(tbl)
		if err := db.QueryRow(`SELECT sentinel FROM "` + name + `"`).Scan(&v); err != nil || v != "keep" {
			t.Fatalf("%s = %q, %v; want untouched", name, v, err)
		}
	}
}

func TestRun_AllFilesAppend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := formcConfig(dir)
	cfg.WriteMode = "append"
	cfg.Files = cfg.Files[:2]
	writeFile(t, dir, "FORM_C_SUBMISSION.tsv", "ACCESSION_NUMBER\tFILING_DATE\n0001-24-1\t2024-01-05\n")
	writeFile(t, dir, "FORM_C_ISSUER_INFORMATION.tsv", "ACCESSION_NUMBER\tNAMEOFISSUER\n0001-24-1\tAcme\n0001-24-2\tGlobex\n")

	repo := &recordingRepo{}
	for i := 0; i < 2; i++ {
		sum, err := Run(context.Background(), cfg, repo)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if _, failed := sum.Failed(); failed || sum.Written() != 3 {
			t.Fatalf("run %d: written=%d", i, sum.Written())
		}
	}
	if len(repo.writes) != 4 {
		t.Fatalf("writes = %d, want 4", len(repo.writes))
	}
	for _, w := range repo.writes {
		if w.Mode != "append" || w.BatchSize != 2 {
			t.Fatalf("request mode/batch = %s/%d", w.Mode, w.BatchSize)
		}
	}
	if got := repo.writes[1].Table.FQN; got != "formc_data.formc_issuer_information" {
		t.Fatalf("second table = %s", got)
	}
}

func TestRun_InvalidOptions(t *testing.T) {
	t.Parallel()

	cfg := formcConfig(t.TempDir())
	cfg.WriteMode = "merge"

	repo := &recordingRepo{}
	sum, err := Run(context.Background(), cfg, repo)
	if err == nil || len(sum.Results) != 0 || len(repo.writes) != 0 {
		t.Fatalf("Run = %+v, %v; want error before any file", sum, err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Delimiter = ","
	cfg.Sampling.MaxReport = 5
	opt, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opt.CSV.Comma != ',' || opt.CSV.MaxReport != 5 || opt.CSV.SampleRows != 50 || opt.Mode != "replace" {
		t.Fatalf("options = %+v", opt)
	}
	if len(opt.WriteStrategies) != 2 || opt.WriteStrategies[0].BatchSize != 1000 || opt.WriteStrategies[1].BatchSize != 500 {
		t.Fatalf("write strategies = %+v", opt.WriteStrategies)
	}
}
