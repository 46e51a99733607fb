package loader

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"filingload/internal/config"
	"filingload/internal/parser/csv"
	"filingload/internal/storage"
)

// Summary is the outcome of a Run.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	// Results holds one entry per attempted file, in config order. Files after
	// the first failure have no entry.
	Results []Result
}

// Failed returns the failed result, if any.
func (s Summary) Failed() (Result, bool) {
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			return r, true
		}
	}
	return Result{}, false
}

// Written sums rows written across files.
func (s Summary) Written() int64 {
	var n int64
	for _, r := range s.Results {
		n += r.Written
	}
	return n
}

// OptionsFromConfig builds LoadFile options from a run config.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	mode, err := storage.ParseWriteMode(cfg.WriteMode)
	if err != nil {
		return Options{}, err
	}
	comma, err := cfg.Comma()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Job:           cfg.Job,
		Mode:          mode,
		Encodings:     cfg.Encodings,
		EncodingBytes: cfg.Sampling.EncodingBytes,
		CSV: csv.Options{
			Comma:         comma,
			SampleRows:    cfg.Sampling.HeaderRows,
			MaxReport:     cfg.Sampling.MaxReport,
			PreviewFields: cfg.Sampling.PreviewFields,
		},
		WriteStrategies: storage.WriteStrategies(cfg.Batch.Size, cfg.Batch.FallbackSize),
	}, nil
}

// Run loads cfg.Files in order through repo and stops at the first failed
// file; later files are not touched. It returns the summary and the error of
// the failed file.
func Run(ctx context.Context, cfg config.Config, repo storage.Repository) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), Started: time.Now()}

	opt, err := OptionsFromConfig(cfg)
	if err != nil {
		return sum, err
	}

	log.Infof("run: id=%s job=%s files=%d mode=%s", sum.RunID, cfg.Job, len(cfg.Files), opt.Mode)
	for i, f := range cfg.Files {
		res := LoadFile(ctx, repo, cfg.Path(f), cfg.TableName(f), opt)
		sum.Results = append(sum.Results, res)
		if res.Status == StatusFailed {
			if skipped := len(cfg.Files) - i - 1; skipped > 0 {
				log.Errorf("run: id=%s stopping after %s; %d files not attempted", sum.RunID, f.File, skipped)
			}
			sum.Duration = time.Since(sum.Started)
			return sum, res.Err
		}
	}
	sum.Duration = time.Since(sum.Started)
	log.Infof("run: id=%s done files=%d written=%d took=%s", sum.RunID, len(sum.Results), sum.Written(), sum.Duration.Truncate(time.Millisecond))
	return sum, nil
}
