// Package config defines the configuration of a filing load run: which files
// to read, where to write them and how to sample, batch and report.
//
// A run config is a YAML (or JSON, which YAML accepts) file layered over
// Default, then over FILINGLOAD_* environment variables. A .env file in the
// working directory is loaded first when present.
//
// Example:
//
//	job: formc-2025q2
//	source_dir: /data/2025Q2_cf
//	schema: formc_data
//	write_mode: replace
//	files:
//	  - { file: FORM_C_SUBMISSION.tsv, table: formc_submission }
//	storage:
//	  kind: postgres
//	  host: localhost
//	  user: postgres
//	  database: sec_stageddata
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvDBUser     = "FILINGLOAD_DB_USER"
	EnvDBPassword = "FILINGLOAD_DB_PASSWORD"
	EnvDBHost     = "FILINGLOAD_DB_HOST"
	EnvDBPort     = "FILINGLOAD_DB_PORT"
	EnvDBName     = "FILINGLOAD_DB_NAME"
	EnvDBDSN      = "FILINGLOAD_DB_DSN"
	EnvSourceDir  = "FILINGLOAD_SOURCE_DIR"
)

// Config is the top-level run configuration.
type Config struct {
	// Job labels metrics and log lines of this run.
	Job string `yaml:"job"`

	// SourceDir is joined with every relative FileSpec.File.
	SourceDir string `yaml:"source_dir"`

	// Files is processed in order; the run stops at the first failure.
	Files []FileSpec `yaml:"files"`

	// Delimiter is "\t" (default), "," or the words "tab" / "comma".
	Delimiter string `yaml:"delimiter"`

	// WriteMode is "replace" or "append".
	WriteMode string `yaml:"write_mode"`

	// Schema qualifies every table that does not name one itself.
	Schema string `yaml:"schema"`

	Storage   Storage  `yaml:"storage"`
	Batch     Batch    `yaml:"batch"`
	Sampling  Sampling `yaml:"sampling"`
	Encodings []string `yaml:"encodings"`
	Metrics   Metrics  `yaml:"metrics"`
}

// FileSpec maps one input file to its target table.
type FileSpec struct {
	File  string `yaml:"file"`
	Table string `yaml:"table"`
}

// Storage selects the backend and how to connect to it. DSN wins over the
// individual connection parts.
type Storage struct {
	Kind     string `yaml:"kind"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// Batch holds rows-per-batch for the typed write and the text fallback.
type Batch struct {
	Size         int `yaml:"size"`
	FallbackSize int `yaml:"fallback_size"`
}

// Sampling bounds the structural validator and the encoding detector.
type Sampling struct {
	HeaderRows    int `yaml:"header_rows"`
	MaxReport     int `yaml:"max_report"`
	PreviewFields int `yaml:"preview_fields"`
	EncodingBytes int `yaml:"encoding_bytes"`
}

// Metrics selects an optional metrics backend: "", "none", "prompush" or
// "datadog".
type Metrics struct {
	Backend        string `yaml:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr"`
}

// Default returns the stock Form C configuration: the four quarterly data set
// files loaded into schema formc_data on a local Postgres, replacing tables.
func Default() Config {
	return Config{
		Job:       "formc",
		SourceDir: ".",
		Files: []FileSpec{
			{File: "FORM_C_SUBMISSION.tsv", Table: "formc_submission"},
			{File: "FORM_C_ISSUER_INFORMATION.tsv", Table: "formc_issuer_information"},
			{File: "FORM_C_DISCLOSURE.tsv", Table: "formc_disclosure"},
			{File: "FORM_C_SIGNATURE.tsv", Table: "formc_signature"},
		},
		Delimiter: "\t",
		WriteMode: "replace",
		Schema:    "formc_data",
		Storage: Storage{
			Kind:     "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "sec_stageddata",
		},
		Batch:     Batch{Size: 1000, FallbackSize: 500},
		Sampling:  Sampling{HeaderRows: 50, MaxReport: 20, PreviewFields: 10, EncodingBytes: 4096},
		Encodings: []string{"utf-8", "utf-16", "latin1", "cp1252"},
	}
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the config file at path over Default and applies environment
// overrides. An empty path yields Default plus overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(bytes.NewReader(b), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// Decode decodes YAML from r into cfg. Fields absent from the document keep
// their current values; unknown fields are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// ApplyEnv overrides connection parts and the source directory from the
// FILINGLOAD_* variables visible through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvDBUser, &c.Storage.User)
	set(EnvDBPassword, &c.Storage.Password)
	set(EnvDBHost, &c.Storage.Host)
	set(EnvDBName, &c.Storage.Database)
	set(EnvDBDSN, &c.Storage.DSN)
	set(EnvSourceDir, &c.SourceDir)
	if v, ok := lookup(EnvDBPort); ok && v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Storage.Port = p
		}
	}
}

// Comma returns the field delimiter rune.
func (c Config) Comma() (rune, error) {
	switch strings.ToLower(c.Delimiter) {
	case "", "\t", "tab", `\t`:
		return '\t', nil
	case ",", "comma":
		return ',', nil
	}
	r := []rune(c.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("config: delimiter %q must be a single character", c.Delimiter)
	}
	return r[0], nil
}

// Path returns the filesystem path of f.
func (c Config) Path(f FileSpec) string {
	if filepath.IsAbs(f.File) || c.SourceDir == "" {
		return f.File
	}
	return filepath.Join(c.SourceDir, f.File)
}

// TableName returns the schema-qualified target of f. Tables that already
// carry a schema are returned unchanged.
func (c Config) TableName(f FileSpec) string {
	if strings.Contains(f.Table, ".") || c.Schema == "" {
		return f.Table
	}
	return c.Schema + "." + f.Table
}

// DSN returns Storage.DSN when set, else a connection string for
// Storage.Kind rendered from the individual parts.
func (c Config) DSN() (string, error) {
	s := c.Storage
	if s.DSN != "" {
		return s.DSN, nil
	}
	switch s.Kind {
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   userinfo(s.User, s.Password),
			Host:   hostPort(s.Host, s.Port, 5432),
			Path:   "/" + s.Database,
		}
		if s.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {s.SSLMode}}.Encode()
		}
		return u.String(), nil
	case "mssql":
		u := url.URL{
			Scheme: "sqlserver",
			User:   userinfo(s.User, s.Password),
			Host:   hostPort(s.Host, s.Port, 1433),
		}
		if s.Database != "" {
			u.RawQuery = url.Values{"database": {s.Database}}.Encode()
		}
		return u.String(), nil
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = s.User
		mc.Passwd = s.Password
		mc.Net = "tcp"
		mc.Addr = hostPort(s.Host, s.Port, 3306)
		mc.DBName = s.Database
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case "sqlite":
		if s.Database == "" {
			return "", fmt.Errorf("config: sqlite requires storage.database (file path)")
		}
		return s.Database, nil
	}
	return "", fmt.Errorf("config: cannot render DSN for storage.kind=%q", s.Kind)
}

func userinfo(user, pass string) *url.Userinfo {
	if user == "" {
		return nil
	}
	if pass == "" {
		return url.User(user)
	}
	return url.UserPassword(user, pass)
}

func hostPort(host string, port, def int) string {
	if host == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = def
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
