// Package datasource defines where raw filing bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh reader over the same underlying bytes on every call, so
// the validator and the parser can each make their own pass.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// TextSource opens a source decoded to UTF-8 from the named encoding.
type TextSource interface {
	OpenText(ctx context.Context, enc string) (io.ReadCloser, error)
}
