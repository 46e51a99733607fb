package loader

import (
	"errors"
	"fmt"

	"filingload/internal/parser/csv"
)

// Stage failures. A failed Result.Err wraps one of these unless the context
// was canceled.
var (
	ErrFileNotFound  = errors.New("file not found")
	ErrRead          = errors.New("read failed")
	ErrHeader        = errors.New("header check failed")
	ErrMalformedRows = errors.New("malformed rows")
	ErrParse         = errors.New("parse failed")
	ErrWrite         = errors.New("write failed")
)

// MalformedRowsError carries the bad-row report of a rejected file.
type MalformedRowsError struct {
	File   string
	Report csv.BadRowReport
}

func (e *MalformedRowsError) Error() string {
	more := ""
	if e.Report.Truncated() {
		more = fmt.Sprintf(", first %d listed", len(e.Report.Rows))
	}
	return fmt.Sprintf("%v: %s: %d rows with field count != %d%s", ErrMalformedRows, e.File, e.Report.Total, e.Report.Expected, more)
}

func (e *MalformedRowsError) Unwrap() error { return ErrMalformedRows }
