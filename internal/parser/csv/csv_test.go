package csv

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"filingload/internal/datasource/file"
)

// textSource serves an in-memory document regardless of the encoding asked for.
type textSource struct {
	data  string
	err   error
	opens int
}

func (s *textSource) OpenText(ctx context.Context, enc string) (io.ReadCloser, error) {
	s.opens++
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.data)), nil
}

func TestSampleHeader(t *testing.T) {
	t.Parallel()

	src := &textSource{data: "Submission ID\tFiling Date\tTotal Amount\nA1\t2024-01-05\t$1,200.50\nA2\t\t\n"}
	s, err := SampleHeader(context.Background(), src, "utf-8", Options{})
	if err != nil {
		t.Fatalf("SampleHeader: %v", err)
	}
	if want := []string{"Submission ID", "Filing Date", "Total Amount"}; !reflect.DeepEqual(s.Header, want) {
		t.Fatalf("Header = %q, want %q", s.Header, want)
	}
	if want := []int{3, 3, 3}; !reflect.DeepEqual(s.Counts, want) {
		t.Fatalf("Counts = %v, want %v", s.Counts, want)
	}
}

func TestSampleHeader_BoundedAndBOM(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("\uFEFFa\tb\n")
	for i := 0; i < 100; i++ {
		b.WriteString("1\t2\n")
	}
	s, err := SampleHeader(context.Background(), &textSource{data: b.String()}, "utf-8", Options{SampleRows: 5})
	if err != nil {
		t.Fatalf("SampleHeader: %v", err)
	}
	if len(s.Counts) != 5 {
		t.Fatalf("len(Counts) = %d, want 5", len(s.Counts))
	}
	if s.Header[0] != "a" {
		t.Fatalf("BOM not stripped: %q", s.Header[0])
	}
}

func TestSampleHeader_Failures(t *testing.T) {
	t.Parallel()

	if _, err := SampleHeader(context.Background(), &textSource{data: ""}, "utf-8", Options{}); !errors.Is(err, ErrNoHeader) {
		t.Fatalf("empty file err = %v, want ErrNoHeader", err)
	}

	missing := file.NewLocal(filepath.Join(t.TempDir(), "FORM_C_SIGNATURE.tsv"))
	if _, err := SampleHeader(context.Background(), missing, "utf-8", Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v, want os.ErrNotExist", err)
	}

	p := filepath.Join(t.TempDir(), "bad.tsv")
	if err := os.WriteFile(p, []byte("a\tb\n\xff\xfe\xfd\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := SampleHeader(context.Background(), file.NewLocal(p), "utf-8", Options{}); err == nil {
		t.Fatalf("undecodable file sampled without error")
	}
}

func TestScanBadRows_CleanFileIsEmpty(t *testing.T) {
	t.Parallel()

	src := &textSource{data: "a\tb\tc\n1\t2\t3\n\t\t\n\"x\ty\"\t2\t3\n"}
	rep, err := ScanBadRows(context.Background(), src, "utf-8", 3, Options{})
	if err != nil {
		t.Fatalf("ScanBadRows: %v", err)
	}
	if !rep.Empty() || len(rep.Rows) != 0 || rep.Truncated() {
		t.Fatalf("report = %+v, want empty", rep)
	}
}

func TestScanBadRows_StrayTab(t *testing.T) {
	t.Parallel()

	src := &textSource{data: "Submission ID\tFiling Date\tTotal Amount\nA1\t2024-01-05\t$1,200.50\nA2\t2024-01-06\t\t5\n"}
	rep, err := ScanBadRows(context.Background(), src, "utf-8", 3, Options{})
	if err != nil {
		t.Fatalf("ScanBadRows: %v", err)
	}
	if rep.Total != 1 || len(rep.Rows) != 1 {
		t.Fatalf("report = %+v, want one bad row", rep)
	}
	got := rep.Rows[0]
	if got.Record != 3 || got.Line != 3 || got.Fields != 4 {
		t.Fatalf("bad row = %+v, want record=3 line=3 fields=4", got)
	}
	if want := []string{"A2", "2024-01-06", "", "5"}; !reflect.DeepEqual(got.Preview, want) {
		t.Fatalf("Preview = %q, want %q", got.Preview, want)
	}
}

func TestScanBadRows_CapKeepsCounting(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("a\tb\n")
	for i := 0; i < 30; i++ {
		b.WriteString("1\t2\t3\t4\t5\t6\t7\t8\t9\t10\t11\t12\n")
	}
	rep, err := ScanBadRows(context.Background(), &textSource{data: b.String()}, "utf-8", 2, Options{MaxReport: 20})
	if err != nil {
		t.Fatalf("ScanBadRows: %v", err)
	}
	if len(rep.Rows) != 20 || rep.Total != 30 || !rep.Truncated() {
		t.Fatalf("rows=%d total=%d truncated=%v, want 20/30/true", len(rep.Rows), rep.Total, rep.Truncated())
	}
	if n := len(rep.Rows[0].Preview); n != DefaultPreviewFields {
		t.Fatalf("preview fields = %d, want %d", n, DefaultPreviewFields)
	}
}

func TestScanBadRows_MultilineRecordLine(t *testing.T) {
	t.Parallel()

	src := &textSource{data: "a\tb\n\"multi\nline\"\tx\n1\n"}
	rep, err := ScanBadRows(context.Background(), src, "utf-8", 2, Options{})
	if err != nil {
		t.Fatalf("ScanBadRows: %v", err)
	}
	if len(rep.Rows) != 1 {
		t.Fatalf("report = %+v, want one bad row", rep)
	}
	if r := rep.Rows[0]; r.Record != 3 || r.Line != 4 {
		t.Fatalf("bad row = %+v, want record=3 line=4", r)
	}
}

func TestParse_StrictKeepsEmptyStrings(t *testing.T) {
	t.Parallel()

	src := &textSource{data: "Submission ID\tFiling Date\tTotal Amount\nA1\t2024-01-05\t$1,200.50\nA2\t\t\n"}
	res, err := Parse(context.Background(), src, "utf-8", Options{}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Strategy != "strict" || res.Skipped != 0 {
		t.Fatalf("strategy=%s skipped=%d, want strict/0", res.Strategy, res.Skipped)
	}
	if res.Set.Len() != 2 {
		t.Fatalf("rows = %d, want 2", res.Set.Len())
	}
	if v, ok := res.Set.Rows[1]["Filing Date"]; !ok || v != "" {
		t.Fatalf("empty field = %#v (present=%v), want empty string", v, ok)
	}
	if v := res.Set.Rows[0]["Total Amount"]; v != "$1,200.50" {
		t.Fatalf("Total Amount = %#v", v)
	}
}

func TestParse_FallsBackToTolerant(t *testing.T) {
	t.Parallel()

	// A bare quote inside an unquoted field breaks strict RFC 4180 parsing.
	src := &textSource{data: "name\tsize\nscreen 5\" wide\t5\nok\t6\nshort\n"}
	res, err := Parse(context.Background(), src, "utf-8", Options{}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Strategy != "tolerant" {
		t.Fatalf("strategy = %s, want tolerant", res.Strategy)
	}
	if res.Set.Len() != 2 || res.Skipped != 1 {
		t.Fatalf("rows=%d skipped=%d, want 2/1", res.Set.Len(), res.Skipped)
	}
	if got := res.Set.Rows[0]["name"]; got != "screen 5\" wide" {
		t.Fatalf("name = %q", got)
	}
	if src.opens != 2 {
		t.Fatalf("source opened %d times, want 2", src.opens)
	}
}

func TestParse_AllStrategiesFail(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk gone")
	_, err := Parse(context.Background(), &textSource{err: boom}, "utf-8", Options{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}
	if !strings.Contains(err.Error(), "strict") || !strings.Contains(err.Error(), "tolerant") {
		t.Fatalf("err %q should name both strategies", err)
	}
}

func TestParse_DuplicateAndBlankHeaders(t *testing.T) {
	t.Parallel()

	res, err := Parse(context.Background(), &textSource{data: "cik\tcik\t\n1\t2\t3\n"}, "utf-8", Options{}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if want := []string{"cik", "cik_2", "col_2"}; !reflect.DeepEqual(res.Set.Columns, want) {
		t.Fatalf("Columns = %q, want %q", res.Set.Columns, want)
	}
	if res.Set.Rows[0]["col_2"] != "3" {
		t.Fatalf("row = %v", res.Set.Rows[0])
	}
}

func TestParse_CommaDelimited(t *testing.T) {
	t.Parallel()

	res, err := Parse(context.Background(), &textSource{data: "a,b\n\"1,5\",2\n"}, "utf-8", Options{Comma: ','}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Set.Rows[0]["a"] != "1,5" {
		t.Fatalf("a = %v, want 1,5", res.Set.Rows[0]["a"])
	}
}

/*
TestScanBadRows_QuotedPrefixIsOneField covers a field that opens with a quoted
fragment followed by literal text. The fragment ends at its closing quote, so
the row keeps its width and the rows after it are read normally.
*/
func TestScanBadRows_QuotedPrefixIsOneField(t *testing.T) {
	t.Parallel()

	data := "name\tamount\tstate\n\"Acme\" Holdings LLC\t123\tNY\nGlobex\t5\tCA\nInitech\t7\tTX\n"
	rep, err := ScanBadRows(context.Background(), &textSource{data: data}, "utf-8", 3, Options{})
	if err != nil {
		t.Fatalf("ScanBadRows: %v", err)
	}
	if !rep.Empty() {
		t.Fatalf("report = %+v, want empty", rep)
	}

	res, err := Parse(context.Background(), &textSource{data: data}, "utf-8", Options{}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Strategy != "tolerant" || res.Skipped != 0 || res.Set.Len() != 3 {
		t.Fatalf("strategy=%s skipped=%d rows=%d, want tolerant/0/3", res.Strategy, res.Skipped, res.Set.Len())
	}
	if got := res.Set.Rows[0]["name"]; got != "Acme Holdings LLC" {
		t.Fatalf("name = %q, want %q", got, "Acme Holdings LLC")
	}
}

func TestLenientReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		rows  [][]string
		lines []int
	}{
		{
			name:  "plain",
			in:    "a\tb\n1\t2\n",
			rows:  [][]string{{"a", "b"}, {"1", "2"}},
			lines: []int{1, 2},
		},
		{
			name:  "doubled quote",
			in:    "\"say \"\"hi\"\"\"\tx\n",
			rows:  [][]string{{`say "hi"`, "x"}},
			lines: []int{1},
		},
		{
			name:  "quote mid field is literal",
			in:    "5\" wide\t1\n",
			rows:  [][]string{{`5" wide`, "1"}},
			lines: []int{1},
		},
		{
			name:  "quoted newline and crlf",
			in:    "\"a\nb\"\t1\r\nc\t2\r\n",
			rows:  [][]string{{"a\nb", "1"}, {"c", "2"}},
			lines: []int{1, 3},
		},
		{
			name:  "blank lines skipped",
			in:    "a\n\n\nb\n",
			rows:  [][]string{{"a"}, {"b"}},
			lines: []int{1, 4},
		},
		{
			name:  "trailing empty field and no final newline",
			in:    "a\t\nb\tc",
			rows:  [][]string{{"a", ""}, {"b", "c"}},
			lines: []int{1, 2},
		},
		{
			name:  "unterminated quote closes at eof",
			in:    "\"open\tstill",
			rows:  [][]string{{"open\tstill"}},
			lines: []int{1},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := newLenientReader(strings.NewReader(tc.in), '\t')
			var rows [][]string
			var lines []int
			for {
				row, err := r.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("Read: %v", err)
				}
				rows = append(rows, row)
				lines = append(lines, r.Line())
			}
			if !reflect.DeepEqual(rows, tc.rows) {
				t.Fatalf("rows = %q, want %q", rows, tc.rows)
			}
			if !reflect.DeepEqual(lines, tc.lines) {
				t.Fatalf("lines = %v, want %v", lines, tc.lines)
			}
		})
	}
}
