package csv

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"filingload/internal/datasource"
)

// ErrNoHeader is returned when a file has no rows at all.
var ErrNoHeader = errors.New("no header row")

// Sample is the result of reading the first rows of a file.
type Sample struct {
	// Header is the first row, BOM-stripped.
	Header []string
	// Counts holds the field count of every sampled row, header first.
	Counts []int
}

// SampleHeader reads at most opt.SampleRows rows and returns the header and
// the per-row field counts. Open and decode failures are logged and returned.
func SampleHeader(ctx context.Context, src datasource.TextSource, enc string, opt Options) (Sample, error) {
	opt = opt.withDefaults()

	rc, err := src.OpenText(ctx, enc)
	if err != nil {
		log.Errorf("header: open: %v", err)
		return Sample{}, fmt.Errorf("sample header: %w", err)
	}
	defer rc.Close()

	cr := newLenientReader(rc, opt.Comma)

	var s Sample
	for i := 0; i < opt.SampleRows; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Errorf("header: read (encoding=%s): %v", enc, err)
			return Sample{}, fmt.Errorf("sample header: %w", err)
		}
		if i == 0 {
			s.Header = StripHeaderBOM(append([]string(nil), row...))
		}
		s.Counts = append(s.Counts, len(row))
	}
	if len(s.Header) == 0 {
		return Sample{}, fmt.Errorf("sample header: %w", ErrNoHeader)
	}
	return s, nil
}
