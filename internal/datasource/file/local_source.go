// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"filingload/internal/charset"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a new Local data source bound to the provided filesystem
// path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound filesystem path.
func (l *Local) Path() string { return l.path }

// Exists reports whether the path names an existing regular file.
func (l *Local) Exists() bool {
	st, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	return st.Mode().IsRegular()
}

// Open opens the configured path for reading.
//
// A canceled context short-circuits without touching the filesystem. Errors
// are wrapped with the path and still match os.ErrNotExist and friends.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// OpenText opens the file and decodes it from enc to UTF-8.
func (l *Local) OpenText(ctx context.Context, enc string) (io.ReadCloser, error) {
	rc, err := l.Open(ctx)
	if err != nil {
		return nil, err
	}
	r, err := charset.NewReader(rc, enc)
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return &textReader{Reader: r, Closer: rc}, nil
}

type textReader struct {
	io.Reader
	io.Closer
}

// IsNotExist reports whether err was caused by a missing file.
func IsNotExist(err error) bool { return errors.Is(err, os.ErrNotExist) }
