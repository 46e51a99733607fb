// Package metrics records operational counters and timings for filing loads.
//
// Callers depend only on Backend. The default backend discards everything so
// instrumentation is always safe to call; cmd/filingload installs a concrete
// Pushgateway or DogStatsD backend from config.
package metrics

import (
	"sync"
	"time"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names emitted by the helpers below.
const (
	StageTotal    = "filingload_stage_total"
	StageDuration = "filingload_stage_duration_seconds"
	RowsTotal     = "filingload_rows_total"
	BatchesTotal  = "filingload_batches_total"
	FilesTotal    = "filingload_files_total"
)

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStage counts one loader stage execution and observes its duration.
func RecordStage(job, stage string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status(err),
	}
	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows increments the row counter for a table. Kinds used by the
// loader are "parsed", "skipped", "malformed" and "written".
func RecordRows(job, table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":   job,
		"table": table,
		"kind":  kind,
	})
}

// RecordBatches increments the batch counter for a table.
func RecordBatches(job, table string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"job":   job,
		"table": table,
	})
}

// RecordFile counts one finished file load.
func RecordFile(job, table string, err error) {
	current().IncCounter(FilesTotal, 1, Labels{
		"job":    job,
		"table":  table,
		"status": status(err),
	})
}
