package builtin

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"filingload/pkg/records"
)

// TwoDigitYearPivot bounds how far into the future a two-digit year may land
// before it is moved back a century.
var TwoDigitYearPivot = 20

var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02", "2006-1-2", "2006/1/2",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006",
		"2 Jan 2006", "02 Jan 2006", "2 January 2006", "2-Jan-2006", "02-Jan-2006",
		"Jan-02-2006", "Mon, Jan 2, 2006", "Monday, January 2, 2006",
		"Jan 2, 2006 3:04 PM", "Jan 2, 2006 15:04", "January 2, 2006 3:04 PM",
		"2 Jan 2006 15:04", "2 Jan 2006 15:04:05", "2 January 2006 15:04",
		"Jan 2006", "January 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "01-02-06", "1.2.06", "01.02.06",
		"2-Jan-06", "02-Jan-06",
	}
	dateTimeLayouts = []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05", "2006-01-02T15:04",
		"2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999", "2006-01-02 15:04",
		"2006-01-02 15:04:05Z07:00", "2006-01-02 15:04:05 -0700", "2006-01-02 15:04:05 -0700 MST",
		"1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006 3:04:05 PM", "1/2/2006 3:04 PM",
		time.RFC1123Z, time.RFC1123, time.ANSIC,
	}

	// dayFirstLayouts are tried last, for numeric dates whose first part
	// cannot be a month.
	dayFirstLayouts = []string{"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2.1.2006", "02.01.2006"}

	bareYear  = regexp.MustCompile(`^\d{4}$`)
	allDigits = regexp.MustCompile(`^\d+$`)
	ordinal   = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	nullWords = map[string]struct{}{"nan": {}, "none": {}, "null": {}}
)

// ParseDate parses s month-first and returns the calendar date at UTC
// midnight. Known layouts are tried first; anything else goes through
// dateparse, which swaps day and month when the month is out of range.
// Blank input, the sentinels nan/none/null and anything unparsable report
// false. A bare four-digit year is January 1 of that year.
func ParseDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	if _, ok := nullWords[strings.ToLower(s)]; ok {
		return time.Time{}, false
	}
	if bareYear.MatchString(s) {
		t, err := time.Parse("2006", s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	s = ordinal.ReplaceAllString(s, "$1")
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}
	pivot := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return midnight(t), true
		}
	}
	if t, ok := lenientParse(s); ok {
		return midnight(t), true
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}

// lenientParse hands s to dateparse. Digit-only strings are left alone so
// they are not read as unix timestamps.
func lenientParse(s string) (t time.Time, ok bool) {
	if allDigits.MatchString(s) {
		return time.Time{}, false
	}
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseIn(s, time.UTC,
		dateparse.PreferMonthFirst(true),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CleanDate converts v to a time.Time at UTC midnight or nil. It never
// panics and handles each value independently.
func CleanDate(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return midnight(x)
	case string:
		if t, ok := ParseDate(x); ok {
			return t
		}
	}
	return nil
}

// CleanDateColumns applies CleanDate to every value of Columns.
type CleanDateColumns struct {
	Columns []string
}

func (c CleanDateColumns) Apply(s *records.Set) *records.Set {
	for _, r := range s.Rows {
		for _, col := range c.Columns {
			if v, ok := r[col]; ok {
				r[col] = CleanDate(v)
			}
		}
	}
	return s
}
