package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"filingload/internal/datasource"
	"filingload/pkg/records"
)

// ParseStrategy is one way of reading a whole file. Strategies are tried in
// order until one succeeds.
type ParseStrategy struct {
	Name string
	// Lazy reads with the lenient reader instead of strict RFC 4180 quoting.
	Lazy bool
	// SkipMalformed drops rows that fail to parse or whose width differs from
	// the header instead of failing the whole file.
	SkipMalformed bool
}

// ParseStrategies is the default order: a strict read, then a tolerant read
// that skips malformed rows.
var ParseStrategies = []ParseStrategy{
	{Name: "strict"},
	{Name: "tolerant", Lazy: true, SkipMalformed: true},
}

// ParseResult is the outcome of a successful Parse.
type ParseResult struct {
	Set      *records.Set
	Strategy string
	// Skipped counts rows dropped by a tolerant strategy.
	Skipped int
}

// Parse reads the whole file into a records.Set. Every value is kept as text
// and empty fields stay empty strings. strategies defaults to ParseStrategies;
// when none succeeds the joined per-strategy errors are returned.
func Parse(ctx context.Context, src datasource.TextSource, enc string, opt Options, strategies []ParseStrategy) (ParseResult, error) {
	opt = opt.withDefaults()
	if len(strategies) == 0 {
		strategies = ParseStrategies
	}

	var errs []error
	for _, st := range strategies {
		set, skipped, err := parseWith(ctx, src, enc, opt.Comma, st)
		if err == nil {
			if skipped > 0 {
				log.Warnf("parse: strategy=%s skipped=%d malformed rows", st.Name, skipped)
			}
			return ParseResult{Set: set, Strategy: st.Name, Skipped: skipped}, nil
		}
		if ctx.Err() != nil {
			return ParseResult{}, ctx.Err()
		}
		log.Warnf("parse: strategy=%s failed: %v", st.Name, err)
		errs = append(errs, fmt.Errorf("%s: %w", st.Name, err))
	}
	return ParseResult{}, errors.Join(errs...)
}

func parseWith(ctx context.Context, src datasource.TextSource, enc string, comma rune, st ParseStrategy) (*records.Set, int, error) {
	rc, err := src.OpenText(ctx, enc)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	cr := newReader(rc, comma, st.Lazy)
	if strict, ok := cr.(*csv.Reader); ok && !st.SkipMalformed {
		// Width is fixed by the header row.
		strict.FieldsPerRecord = 0
	}

	hdr, err := cr.Read()
	if err == io.EOF {
		return nil, 0, ErrNoHeader
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := headerNames(StripHeaderBOM(append([]string(nil), hdr...)))
	set := &records.Set{Columns: cols}

	skipped := 0
	for line := 2; ; line++ {
		if line%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if st.SkipMalformed && errors.As(err, &pe) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("record %d: %w", line, err)
		}
		if len(row) != len(cols) {
			if !st.SkipMalformed {
				return nil, 0, fmt.Errorf("record %d: %d fields, want %d", line, len(row), len(cols))
			}
			skipped++
			continue
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[c] = row[i]
		}
		set.Rows = append(set.Rows, rec)
	}
	return set, skipped, nil
}

// headerNames fills blank header cells with positional names and makes
// duplicates unique.
func headerNames(hdr []string) []string {
	out := make([]string, len(hdr))
	for i, h := range hdr {
		if h == "" {
			h = fmt.Sprintf("col_%d", i)
		}
		out[i] = h
	}
	return records.UniqueNames(out)
}
