package config

import (
	"strings"
	"testing"

	_ "filingload/internal/storage/all"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"empty job", func(c *Config) { c.Job = "" }, SeverityWarning, "job", "empty"},
		{"bad write mode", func(c *Config) { c.WriteMode = "upsert" }, SeverityError, "write_mode", "upsert"},
		{"bad delimiter", func(c *Config) { c.Delimiter = ";;" }, SeverityError, "delimiter", "single character"},
		{"no files", func(c *Config) { c.Files = nil }, SeverityError, "files", "at least one"},
		{"blank file", func(c *Config) { c.Files[1].File = " " }, SeverityError, "files[1].file", "must not be empty"},
		{"blank table", func(c *Config) { c.Files[2].Table = "" }, SeverityError, "files[2].table", "must not be empty"},
		{"duplicate table", func(c *Config) { c.Files[3].Table = "formc_submission" }, SeverityWarning, "files[3].table", "files[0]"},
		{"no storage kind", func(c *Config) { c.Storage.Kind = "" }, SeverityError, "storage.kind", "must not be empty"},
		{"unknown storage kind", func(c *Config) { c.Storage.Kind = "oracle" }, SeverityWarning, "storage.kind", "oracle"},
		{"port range", func(c *Config) { c.Storage.Port = 70000 }, SeverityError, "storage.port", "out of range"},
		{"negative batch", func(c *Config) { c.Batch.Size = -1 }, SeverityError, "batch.size", "negative"},
		{"zero report cap", func(c *Config) { c.Sampling.MaxReport = 0 }, SeverityWarning, "sampling.max_report", "default"},
		{"fallback larger", func(c *Config) { c.Batch.FallbackSize = 5000 }, SeverityWarning, "batch.fallback_size", "larger"},
		{"prompush without url", func(c *Config) { c.Metrics.Backend = "prompush" }, SeverityError, "metrics.pushgateway_url", "requires"},
		{"datadog without addr", func(c *Config) { c.Metrics.Backend = "datadog" }, SeverityError, "metrics.datadog_addr", "requires"},
		{"unknown metrics", func(c *Config) { c.Metrics.Backend = "graphite" }, SeverityError, "metrics.backend", "graphite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			cfg.Files = append([]FileSpec(nil), cfg.Files...)
			tt.mutate(&cfg)
			issues := Validate(cfg)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("missing %s at %s (%q); got %+v", tt.sev, tt.path, tt.msg, issues)
			}
		})
	}
}

/*
TestValidate_DefaultIsClean verifies that the stock configuration with every
backend kind registered yields no issues at all.
*/
func TestValidate_DefaultIsClean(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"postgres", "mysql", "mssql"} {
		cfg := Default()
		cfg.Storage.Kind = kind
		if issues := Validate(cfg); len(issues) != 0 {
			t.Errorf("kind=%s: unexpected issues %+v", kind, issues)
		}
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "files[0].table", Message: "table must not be empty"}
	if got, want := iss.Error(), "error at files[0].table: table must not be empty"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if HasErrors([]Issue{{Severity: SeverityWarning}}) {
		t.Fatal("HasErrors(warning only) = true")
	}
}
