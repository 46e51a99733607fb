// Package loader runs the per-file load state machine and the multi-file
// driver on top of it.
//
// A file moves through HEADER_CHECK, ROW_VALIDATION, PARSE, NORMALIZE,
// CLASSIFY_AND_CLEAN, NULL_COERCION and WRITE. Any stage failure ends the
// file as FAILED; there are no retries between stages, only the ordered
// parse and write strategies inside PARSE and WRITE.
package loader

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"

	"filingload/internal/charset"
	"filingload/internal/datasource/file"
	"filingload/internal/ddl"
	"filingload/internal/metrics"
	"filingload/internal/parser/csv"
	"filingload/internal/storage"
	"filingload/internal/transformer"
	"filingload/internal/transformer/builtin"
	"filingload/pkg/records"
)

// logPreviewRows bounds the bad rows and sample counts echoed to the log.
const logPreviewRows = 10

// Status is the outcome of one file.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Options configures LoadFile. Zero values take package defaults.
type Options struct {
	// Job labels metrics.
	Job string

	Mode storage.WriteMode

	// Encodings are the detector candidates; EncodingBytes its sample size.
	Encodings     []string
	EncodingBytes int

	CSV             csv.Options
	ParseStrategies []csv.ParseStrategy
	WriteStrategies []storage.WriteStrategy

	// Classifier defaults to builtin.NewClassifier when it has no rules.
	Classifier builtin.Classifier
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = storage.Replace
	}
	if len(o.Encodings) == 0 {
		o.Encodings = charset.DefaultCandidates
	}
	if o.EncodingBytes <= 0 {
		o.EncodingBytes = charset.DefaultSampleBytes
	}
	if len(o.ParseStrategies) == 0 {
		o.ParseStrategies = csv.ParseStrategies
	}
	if len(o.WriteStrategies) == 0 {
		o.WriteStrategies = storage.WriteStrategies(0, 0)
	}
	if len(o.Classifier.Rules) == 0 {
		o.Classifier = builtin.NewClassifier()
	}
	return o
}

// Result describes how one file ended.
type Result struct {
	File  string
	Table string

	// Stage is the last stage entered; Status says how it ended.
	Stage  Stage
	Status Status

	Encoding string
	Columns  []string
	Numeric  []string
	Date     []string

	// Parsed counts data rows read; Skipped counts rows a tolerant parse
	// dropped.
	Parsed        int
	Skipped       int
	ParseStrategy string

	Written       int64
	WriteStrategy string

	// BadRows is set when ROW_VALIDATION rejected the file.
	BadRows *csv.BadRowReport

	// Fingerprint is the xxh3 hash of the raw file bytes.
	Fingerprint uint64
	Duration    time.Duration
	Err         error
}

// fileLoad is the state of one LoadFile call.
type fileLoad struct {
	ctx   context.Context
	repo  storage.Repository
	opt   Options
	src   *file.Local
	res   *Result
	table string
	set   *records.Set

	// checkOnly stops after ROW_VALIDATION.
	checkOnly bool
}

// LoadFile loads the file at path into table through repo. The returned
// Result is always populated; Result.Err wraps one of the Err* sentinels
// when Status is StatusFailed.
func LoadFile(ctx context.Context, repo storage.Repository, path, table string, opt Options) Result {
	return newFileLoad(ctx, repo, path, table, opt).finish()
}

// CheckFile runs HEADER_CHECK and ROW_VALIDATION only. Nothing is parsed
// into memory or written.
func CheckFile(ctx context.Context, path string, opt Options) Result {
	l := newFileLoad(ctx, nil, path, "", opt)
	l.checkOnly = true
	return l.finish()
}

func newFileLoad(ctx context.Context, repo storage.Repository, path, table string, opt Options) *fileLoad {
	return &fileLoad{
		ctx:   ctx,
		repo:  repo,
		opt:   opt.withDefaults(),
		src:   file.NewLocal(path),
		res:   &Result{File: path, Table: table, Stage: Start},
		table: table,
	}
}

func (l *fileLoad) finish() Result {
	start := time.Now()
	path, table, opt := l.src.Path(), l.table, l.opt

	err := l.run()
	res := *l.res
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
	} else {
		res.Status = StatusSuccess
	}

	switch {
	case l.checkOnly:
		log.Infof("check: file=%s encoding=%s columns=%d status=%s", path, res.Encoding, len(res.Columns), res.Status)
		return res
	case err != nil:
		log.Errorf("load: file=%s table=%s stage=%s status=%s err=%v", path, table, res.Stage, res.Status, err)
	default:
		log.Infof("load: file=%s table=%s status=%s rows=%d written=%d strategy=%s took=%s",
			path, table, res.Status, res.Parsed, res.Written, res.WriteStrategy, res.Duration.Truncate(time.Millisecond))
	}
	metrics.RecordFile(opt.Job, table, err)
	return res
}

func (l *fileLoad) run() error {
	if err := l.ctx.Err(); err != nil {
		return err
	}
	if !l.src.Exists() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, l.src.Path())
	}
	fp, err := fingerprint(l.ctx, l.src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRead, l.src.Path(), err)
	}
	l.res.Fingerprint = fp
	log.Infof("load: file=%s table=%s fingerprint=%016x", l.src.Path(), l.table, fp)

	if err := l.stage(HeaderCheck, l.headerCheck); err != nil {
		return err
	}
	expected := len(l.res.Columns)
	if err := l.stage(RowValidation, func() error { return l.rowValidation(expected) }); err != nil {
		return err
	}
	if l.checkOnly {
		return nil
	}
	if err := l.stage(Parse, l.parse); err != nil {
		return err
	}
	if l.set.Len() == 0 {
		log.Warnf("load: file=%s has no data rows; nothing to write", l.src.Path())
		return nil
	}

	var cls builtin.Classification
	steps := []struct {
		stage Stage
		t     transformer.Transformer
	}{
		{Normalize, builtin.NormalizeColumns{}},
		{ClassifyAndClean, transformer.Func(func(s *records.Set) *records.Set {
			cls = l.opt.Classifier.Classify(s.Columns)
			l.res.Numeric, l.res.Date = cls.Numeric, cls.Date
			log.Infof("classify: table=%s numeric=%v date=%v", l.table, cls.Numeric, cls.Date)
			return builtin.Clean(cls).Apply(s)
		})},
		{NullCoercion, builtin.EmptyToNull{}},
	}
	for _, st := range steps {
		if err := l.stage(st.stage, func() error {
			l.set = st.t.Apply(l.set)
			return nil
		}); err != nil {
			return err
		}
	}
	l.res.Columns = append([]string(nil), l.set.Columns...)

	return l.stage(Write, func() error { return l.write(cls) })
}

// stage enters s, runs fn and records its duration.
func (l *fileLoad) stage(s Stage, fn func() error) error {
	if err := l.ctx.Err(); err != nil {
		return err
	}
	l.res.Stage = s
	log.Debugf("load: file=%s stage=%s", l.src.Path(), s)
	start := time.Now()
	err := fn()
	metrics.RecordStage(l.opt.Job, s.String(), err, time.Since(start))
	return err
}

func (l *fileLoad) headerCheck() error {
	enc := charset.Detect(l.src.Path(), l.opt.EncodingBytes, l.opt.Encodings)
	l.res.Encoding = enc

	sample, err := csv.SampleHeader(l.ctx, l.src, enc, l.opt.CSV)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrHeader, l.src.Path(), err)
	}
	l.res.Columns = sample.Header
	counts := sample.Counts
	if len(counts) > logPreviewRows {
		counts = counts[:logPreviewRows]
	}
	log.Infof("header: file=%s encoding=%s columns=%d sample_counts=%v", l.src.Path(), enc, len(sample.Header), counts)
	return nil
}

func (l *fileLoad) rowValidation(expected int) error {
	rep, err := csv.ScanBadRows(l.ctx, l.src, l.res.Encoding, expected, l.opt.CSV)
	if err != nil {
		// The scan only fails on I/O or decoding, never on row shape.
		return fmt.Errorf("%w: %s (encoding=%s): %w", ErrRead, l.src.Path(), l.res.Encoding, err)
	}
	if rep.Empty() {
		return nil
	}
	l.res.BadRows = &rep
	metrics.RecordRows(l.opt.Job, l.table, "malformed", int64(rep.Total))

	log.Errorf("rows: file=%s bad_rows=%d expected_fields=%d", l.src.Path(), rep.Total, expected)
	for i, br := range rep.Rows {
		if i == logPreviewRows {
			break
		}
		log.Errorf("rows: record=%d line=%d fields=%d preview=%q", br.Record, br.Line, br.Fields, br.Preview)
	}
	if rep.Truncated() {
		log.Errorf("rows: %d more bad rows not listed", rep.Total-len(rep.Rows))
	}
	log.Warn("rows: fix stray tabs or embedded newlines in the rows above and re-run")
	return &MalformedRowsError{File: l.src.Path(), Report: rep}
}

func (l *fileLoad) parse() error {
	pr, err := csv.Parse(l.ctx, l.src, l.res.Encoding, l.opt.CSV, l.opt.ParseStrategies)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParse, l.src.Path(), err)
	}
	l.set = pr.Set
	l.res.Parsed = pr.Set.Len()
	l.res.Skipped = pr.Skipped
	l.res.ParseStrategy = pr.Strategy
	metrics.RecordRows(l.opt.Job, l.table, "parsed", int64(l.res.Parsed))
	metrics.RecordRows(l.opt.Job, l.table, "skipped", int64(pr.Skipped))
	log.Infof("parse: file=%s strategy=%s rows=%d columns=%d", l.src.Path(), pr.Strategy, l.res.Parsed, len(pr.Set.Columns))
	return nil
}

func (l *fileLoad) write(cls builtin.Classification) error {
	def := ddl.TableDef{
		FQN:     l.table,
		Columns: ddl.Columns(l.set.Columns, func(col string) ddl.LogicalType { return logicalType(cls.Of(col)) }),
	}
	rows := l.set.Values()

	var lastErr error
	for _, st := range l.opt.WriteStrategies {
		req := st.Request(def, l.opt.Mode, rows)
		n, err := l.repo.Write(l.ctx, req)
		if err == nil {
			l.res.Written = n
			l.res.WriteStrategy = st.Name
			metrics.RecordRows(l.opt.Job, l.table, "written", n)
			metrics.RecordBatches(l.opt.Job, l.table, batches(n, st.BatchSize))
			log.Infof("write: table=%s strategy=%s mode=%s rows=%d", l.table, st.Name, l.opt.Mode, n)
			return nil
		}
		lastErr = err
		log.Warnf("write: table=%s strategy=%s failed: %s", l.table, st.Name, storage.Describe(err))
		if l.ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrWrite, l.table, lastErr)
}

func logicalType(c builtin.Class) ddl.LogicalType {
	switch c {
	case builtin.Numeric:
		return ddl.Numeric
	case builtin.Date:
		return ddl.Date
	default:
		return ddl.Text
	}
}

func batches(rows int64, size int) int64 {
	if rows <= 0 || size <= 0 {
		return 0
	}
	return (rows + int64(size) - 1) / int64(size)
}

// fingerprint hashes the raw file with xxh3.
func fingerprint(ctx context.Context, src *file.Local) (uint64, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, rc); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
