package csv

import (
	"context"
	"fmt"
	"io"

	"filingload/internal/datasource"
)

// BadRow describes one row whose width differs from the header.
type BadRow struct {
	// Record is the 1-based record number; the header is record 1.
	Record int
	// Line is the physical line the record starts on. It differs from Record
	// only when quoted fields span lines.
	Line int
	// Fields is the observed field count.
	Fields int
	// Preview holds the leading fields of the row.
	Preview []string
}

// BadRowReport collects the malformed rows of one file.
type BadRowReport struct {
	// Expected is the header width every row was checked against.
	Expected int
	// Rows holds the first MaxReport malformed rows in file order.
	Rows []BadRow
	// Total counts every malformed row in the file, including the ones past
	// the report cap.
	Total int
}

// Empty reports whether the file had no malformed rows.
func (r BadRowReport) Empty() bool { return r.Total == 0 }

// Truncated reports whether more malformed rows exist than were recorded.
func (r BadRowReport) Truncated() bool { return r.Total > len(r.Rows) }

// ScanBadRows reads the whole file and reports every row whose field count is
// not expected. Only the first opt.MaxReport rows are kept, but the scan runs
// to the end so Total is exact. Rows are split by the lenient reader, so
// quoting never fails a row on its own. Blank lines are skipped and never
// reported, even though they have zero fields. Read and decode errors abort
// the scan.
func ScanBadRows(ctx context.Context, src datasource.TextSource, enc string, expected int, opt Options) (BadRowReport, error) {
	opt = opt.withDefaults()
	rep := BadRowReport{Expected: expected}

	rc, err := src.OpenText(ctx, enc)
	if err != nil {
		return rep, fmt.Errorf("scan rows: %w", err)
	}
	defer rc.Close()

	cr := newLenientReader(rc, opt.Comma)
	for rec := 1; ; rec++ {
		if rec%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
		}
		row, err := cr.Read()
		if err == io.EOF {
			return rep, nil
		}
		if err != nil {
			return rep, fmt.Errorf("scan rows: record %d: %w", rec, err)
		}
		if len(row) == expected {
			continue
		}
		rep.Total++
		if len(rep.Rows) >= opt.MaxReport {
			continue
		}
		n := min(len(row), opt.PreviewFields)
		rep.Rows = append(rep.Rows, BadRow{
			Record:  rec,
			Line:    cr.Line(),
			Fields:  len(row),
			Preview: append([]string(nil), row[:n]...),
		})
	}
}
