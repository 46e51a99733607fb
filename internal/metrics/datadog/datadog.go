// Package datadog sends filingload metrics to a DogStatsD agent.
//
// Counters become Count metrics and durations become Histograms. Labels are
// sent as sorted "key:value" tags after the backend's global tags.
package datadog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"filingload/internal/metrics"
)

// Config selects the agent and what is attached to every metric.
type Config struct {
	// Addr is the DogStatsD address: "host:port" or "unix:///path/to/socket".
	Addr string

	// Namespace prefixes every metric name, e.g. "filingload.".
	Namespace string

	// GlobalTags ride along with every metric, e.g. "job:formc".
	GlobalTags []string

	// Options are appended after the ones derived from the fields above.
	Options []statsd.Option
}

// Backend implements metrics.Backend on a statsd client. A zero Backend
// drops everything.
type Backend struct {
	client *statsd.Client
}

// NewBackend dials cfg.Addr with the namespace and global tags applied as
// client options.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("datadog: Addr is required")
	}

	c, err := statsd.New(cfg.Addr, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("datadog: dial %s: %w", cfg.Addr, err)
	}
	return &Backend{client: c}, nil
}

func clientOptions(cfg Config) []statsd.Option {
	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	return append(opts, cfg.Options...)
}

// IncCounter sends delta as a Count; fractions are truncated.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Histogram(name, value, labelsToTags(labels), 1)
}

// Flush closes the client, which drains its buffers. The backend is meant
// to be flushed once at exit.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
