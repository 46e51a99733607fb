package main

import (
	log "github.com/sirupsen/logrus"

	"filingload/internal/config"
	"filingload/internal/metrics"
	"filingload/internal/metrics/datadog"
	"filingload/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns the flush to run
// at exit. Backend errors are logged and leave metrics disabled.
func setupMetrics(cfg config.Config) func() {
	job := cfg.Job
	if job == "" {
		job = "filingload"
	}

	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "", "none":
		log.Debugf("metrics: disabled")
		return func() {}
	case "prompush":
		b, err = prompush.NewBackend(job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  "filingload.",
			GlobalTags: []string{"job:" + job},
		})
	default:
		log.Warnf("metrics: unknown backend %q; metrics disabled", cfg.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.Warnf("metrics: backend=%s: %v; metrics disabled", cfg.Metrics.Backend, err)
		return func() {}
	}

	log.Infof("metrics: backend=%s job=%s", cfg.Metrics.Backend, job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warnf("metrics: flush: %v", err)
		}
	}
}
