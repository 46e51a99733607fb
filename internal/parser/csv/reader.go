package csv

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
)

// rowReader is the part of csv.Reader the scanners need.
type rowReader interface {
	Read() ([]string, error)
}

// newReader returns a strict RFC 4180 csv.Reader that accepts any row width,
// or a lenientReader when lazy is set.
func newReader(r io.Reader, comma rune, lazy bool) rowReader {
	if lazy {
		return newLenientReader(r, comma)
	}
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	return cr
}

const (
	startRecord = iota
	startField
	inField
	inQuoted
	quoteInQuoted
)

// lenientReader splits delimited text the way spreadsheet exports are read
// in practice. A quote opens a quoted section only at the start of a field;
// elsewhere it is literal. After a closing quote the rest of the field is
// read literally up to the next delimiter, so `"Acme" Holdings` is one field.
// Doubled quotes inside a quoted section stand for one quote. Quoted
// sections may span lines. Blank lines are skipped.
type lenientReader struct {
	br    *bufio.Reader
	comma rune

	// line is the current physical line; start is where the last record
	// returned by Read began.
	line  int
	start int

	field strings.Builder
	row   []string
}

func newLenientReader(r io.Reader, comma rune) *lenientReader {
	return &lenientReader{br: bufio.NewReader(r), comma: comma, line: 1}
}

// Line returns the physical line the last record started on.
func (r *lenientReader) Line() int { return r.start }

// Read returns the next record. It never fails on quoting; only errors from
// the underlying reader are returned. An unterminated quoted section at end
// of input closes the field.
func (r *lenientReader) Read() ([]string, error) {
	r.row = make([]string, 0, len(r.row))
	r.field.Reset()
	state := startRecord

	for {
		c, _, err := r.br.ReadRune()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			if state == inQuoted || r.field.Len() > 0 {
				r.save()
			}
			if len(r.row) == 0 {
				return nil, io.EOF
			}
			return r.row, nil
		}

		if state == startRecord {
			if c == '\n' || c == '\r' {
				r.endLine(c)
				continue
			}
			r.start = r.line
			state = startField
		}

		switch state {
		case startField:
			switch c {
			case '\n', '\r':
				r.save()
				r.endLine(c)
				return r.row, nil
			case '"':
				state = inQuoted
			case r.comma:
				r.save()
			default:
				r.field.WriteRune(c)
				state = inField
			}
		case inField:
			switch c {
			case '\n', '\r':
				r.save()
				r.endLine(c)
				return r.row, nil
			case r.comma:
				r.save()
				state = startField
			default:
				r.field.WriteRune(c)
			}
		case inQuoted:
			if c == '"' {
				state = quoteInQuoted
				continue
			}
			if c == '\n' {
				r.line++
			}
			r.field.WriteRune(c)
		case quoteInQuoted:
			switch c {
			case '"':
				r.field.WriteRune('"')
				state = inQuoted
			case '\n', '\r':
				r.save()
				r.endLine(c)
				return r.row, nil
			case r.comma:
				r.save()
				state = startField
			default:
				r.field.WriteRune(c)
				state = inField
			}
		}
	}
}

func (r *lenientReader) save() {
	r.row = append(r.row, r.field.String())
	r.field.Reset()
}

// endLine consumes the rest of a line ending that began with c.
func (r *lenientReader) endLine(c rune) {
	if c == '\r' {
		if next, _, err := r.br.ReadRune(); err == nil && next != '\n' {
			_ = r.br.UnreadRune()
		}
	}
	r.line++
}
