package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"filingload/internal/loader"
	"filingload/internal/storage"
)

func newLoadCmd(f *flags) *cobra.Command {
	var (
		metricsBackend string
		pushgatewayURL string
		datadogAddr    string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Validate and load every configured file, stopping at the first failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				log.Error(err)
				return err
			}
			fl := cmd.Flags()
			if fl.Changed("metrics-backend") {
				cfg.Metrics.Backend = metricsBackend
			}
			if fl.Changed("pushgateway-url") {
				cfg.Metrics.PushgatewayURL = pushgatewayURL
			}
			if fl.Changed("datadog-addr") {
				cfg.Metrics.DatadogAddr = datadogAddr
			}

			flush := setupMetrics(cfg)
			defer flush()

			ctx := cmd.Context()
			dsn, err := cfg.DSN()
			if err != nil {
				log.Error(err)
				return err
			}
			repo, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: dsn})
			if err != nil {
				log.Errorf("storage: kind=%s: %v", cfg.Storage.Kind, err)
				return err
			}
			defer repo.Close()

			sum, err := loader.Run(ctx, cfg, repo)
			report(cmd, sum)
			if err != nil {
				return fmt.Errorf("run %s: %w", sum.RunID, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsBackend, "metrics-backend", "", "metrics backend (none, prompush, datadog)")
	cmd.Flags().StringVar(&pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	cmd.Flags().StringVar(&datadogAddr, "datadog-addr", "", "DogStatsD address")
	return cmd
}

// report prints one line per attempted file.
func report(cmd *cobra.Command, sum loader.Summary) {
	out := cmd.OutOrStdout()
	for _, r := range sum.Results {
		switch r.Status {
		case loader.StatusSuccess:
			fmt.Fprintf(out, "%-8s %s -> %s rows=%d written=%d strategy=%s\n", r.Status, r.File, r.Table, r.Parsed, r.Written, r.WriteStrategy)
		default:
			fmt.Fprintf(out, "%-8s %s -> %s stage=%s: %v\n", r.Status, r.File, r.Table, r.Stage, r.Err)
		}
	}
	if failed, ok := sum.Failed(); ok {
		fmt.Fprintf(out, "run %s stopped at %s after %d of the configured files\n", sum.RunID, failed.File, len(sum.Results))
	}
}
