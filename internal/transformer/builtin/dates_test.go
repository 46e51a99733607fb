package builtin

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-05", day(2024, 1, 5), true},
		{"2024/01/05", day(2024, 1, 5), true},
		{"01/05/2024", day(2024, 1, 5), true},
		{"1/5/2024", day(2024, 1, 5), true},
		{"1-5-2024", day(2024, 1, 5), true},
		{"01.05.2024", day(2024, 1, 5), true},
		{"1/5/24", day(2024, 1, 5), true},
		{"12/31/99", day(1999, 12, 31), true},
		{"Jan 5, 2024", day(2024, 1, 5), true},
		{"January 5 2024", day(2024, 1, 5), true},
		{"5 Jan 2024", day(2024, 1, 5), true},
		{"05-Jan-2024", day(2024, 1, 5), true},
		{"March 2023", day(2023, 3, 1), true},
		{"20240105", day(2024, 1, 5), true},
		{"2024", day(2024, 1, 1), true},
		{"2024-01-05 13:45:00", day(2024, 1, 5), true},
		{"2024-01-05T13:45:00Z", day(2024, 1, 5), true},
		{"1/5/2024 3:04 PM", day(2024, 1, 5), true},
		{"  2024-01-05  ", day(2024, 1, 5), true},
		{"13/01/2024", day(2024, 1, 13), true},
		{"25.12.2023", day(2023, 12, 25), true},
		{"January 5th, 2024", day(2024, 1, 5), true},
		{"March 1st 2024", day(2024, 3, 1), true},
		{"5 Jan 2024 10:00", day(2024, 1, 5), true},
		{"Jan 5, 2024 10:30 AM", day(2024, 1, 5), true},
		{"2024-01-05 13:45:00 +0100", day(2024, 1, 5), true},
		{"", time.Time{}, false},
		{"   ", time.Time{}, false},
		{"nan", time.Time{}, false},
		{"None", time.Time{}, false},
		{"NULL", time.Time{}, false},
		{"N/A", time.Time{}, false},
		{"13/45/2024", time.Time{}, false},
		{"not a date", time.Time{}, false},
	}
	for _, tc := range tests {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok || !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

/*
TestCleanDate_Total verifies CleanDate maps every input to either a UTC
midnight time.Time or nil, without panicking, for awkward inputs.
*/
func TestCleanDate_Total(t *testing.T) {
	t.Parallel()

	inputs := []any{
		nil, "", "nan", "2024-02-30", "9999999999999", "\x00\xff", "--", "/", "1/", "0",
		42, 3.14, true, time.Time{}, time.Date(2024, 1, 5, 18, 30, 0, 0, time.FixedZone("x", 3600)),
	}
	for _, in := range inputs {
		got := CleanDate(in)
		if got == nil {
			continue
		}
		tm, ok := got.(time.Time)
		if !ok {
			t.Fatalf("CleanDate(%#v) = %#v, want time.Time or nil", in, got)
		}
		if tm.Location() != time.UTC || tm.Hour() != 0 || tm.Minute() != 0 {
			t.Fatalf("CleanDate(%#v) = %v, want UTC midnight", in, tm)
		}
	}
	if got := CleanDate(time.Date(2024, 1, 5, 18, 30, 0, 0, time.UTC)); got != day(2024, 1, 5) {
		t.Fatalf("time.Time input = %v", got)
	}
	if got := CleanDate(day(2024, 1, 5)); got != day(2024, 1, 5) {
		t.Fatalf("CleanDate not idempotent: %v", got)
	}
}
