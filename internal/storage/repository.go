// Package storage contains storage-agnostic contracts: the Repository a
// loader writes through, the backend registry, ordered write strategies and
// batching helpers shared by the backends.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"filingload/internal/ddl"
)

// WriteMode selects what happens to an existing target table.
type WriteMode string

const (
	// Replace drops and recreates the table before inserting.
	Replace WriteMode = "replace"
	// Append creates the table when missing and inserts.
	Append WriteMode = "append"
)

// ParseWriteMode accepts "replace" or "append"; blank means Replace.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Replace:
		return Replace, nil
	case Append:
		return Append, nil
	}
	return "", fmt.Errorf("unsupported write_mode=%s", s)
}

// WriteRequest is one write attempt. Rows are aligned to Table.Columns.
type WriteRequest struct {
	Table     ddl.TableDef
	Mode      WriteMode
	Rows      [][]any
	BatchSize int
}

// Repository writes whole tables. Write runs inside a single transaction on
// backends that support transactional DDL: a failed attempt leaves the
// target as it was.
type Repository interface {
	Write(ctx context.Context, req WriteRequest) (int64, error)
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for a backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. Backends call it from
// init.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
