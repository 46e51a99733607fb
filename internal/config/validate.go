package config

import (
	"fmt"
	"strings"

	"filingload/internal/storage"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind", "files[1].table").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over cfg without touching the filesystem
// or the database.
func Validate(cfg Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will be labeled with an empty job",
		})
	}
	if _, err := storage.ParseWriteMode(cfg.WriteMode); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "write_mode",
			Message:  err.Error(),
		})
	}
	if _, err := cfg.Comma(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "delimiter",
			Message:  err.Error(),
		})
	}

	issues = append(issues, validateFiles(cfg)...)
	issues = append(issues, validateStorage(cfg)...)
	issues = append(issues, validateSizes(cfg)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	return issues
}

func validateFiles(cfg Config) []Issue {
	var issues []Issue

	if len(cfg.Files) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "files",
			Message:  "at least one file must be listed",
		})
	}

	tables := make(map[string]int, len(cfg.Files))
	for i, f := range cfg.Files {
		if strings.TrimSpace(f.File) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("files[%d].file", i),
				Message:  "file must not be empty",
			})
		}
		if strings.TrimSpace(f.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("files[%d].table", i),
				Message:  "table must not be empty",
			})
			continue
		}
		name := cfg.TableName(f)
		if j, dup := tables[name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("files[%d].table", i),
				Message:  fmt.Sprintf("table %s is also the target of files[%d]; with write_mode=replace only the last file survives", name, j),
			})
		}
		tables[name] = i
	}
	return issues
}

func validateStorage(cfg Config) []Issue {
	var issues []Issue
	s := cfg.Storage

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	}

	known := false
	for _, k := range storage.ListKinds() {
		if k == s.Kind {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if _, err := cfg.DSN(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  err.Error(),
		})
	}
	if s.Port < 0 || s.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.port",
			Message:  fmt.Sprintf("port %d out of range", s.Port),
		})
	}
	return issues
}

func validateSizes(cfg Config) []Issue {
	var issues []Issue
	check := func(path string, v int) {
		if v < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("%d must not be negative", v),
			})
		} else if v == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  "0 selects the built-in default",
			})
		}
	}
	check("batch.size", cfg.Batch.Size)
	check("batch.fallback_size", cfg.Batch.FallbackSize)
	check("sampling.header_rows", cfg.Sampling.HeaderRows)
	check("sampling.max_report", cfg.Sampling.MaxReport)
	check("sampling.preview_fields", cfg.Sampling.PreviewFields)
	check("sampling.encoding_bytes", cfg.Sampling.EncodingBytes)

	if cfg.Batch.FallbackSize > 0 && cfg.Batch.Size > 0 && cfg.Batch.FallbackSize > cfg.Batch.Size {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "batch.fallback_size",
			Message:  "fallback batch is larger than the primary batch",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "prompush":
		if m.PushgatewayURL == "" {
			return []Issue{{Severity: SeverityError, Path: "metrics.pushgateway_url", Message: "prompush backend requires pushgateway_url"}}
		}
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{{Severity: SeverityError, Path: "metrics.datadog_addr", Message: "datadog backend requires datadog_addr"}}
		}
	default:
		return []Issue{{Severity: SeverityError, Path: "metrics.backend", Message: fmt.Sprintf("unknown metrics backend %q", m.Backend)}}
	}
	return nil
}
