package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"filingload/internal/loader"
)

func newCheckCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config and the structure of every configured file without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				log.Error(err)
				return err
			}
			opt, err := loader.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, fs := range cfg.Files {
				res := loader.CheckFile(cmd.Context(), cfg.Path(fs), opt)
				if res.Err != nil {
					failed++
					fmt.Fprintf(out, "%-8s %s: %v\n", res.Status, res.File, res.Err)
					continue
				}
				fmt.Fprintf(out, "%-8s %s encoding=%s columns=%d\n", res.Status, res.File, res.Encoding, len(res.Columns))
			}
			if failed > 0 {
				return fmt.Errorf("check: %d of %d files failed", failed, len(cfg.Files))
			}
			return nil
		},
	}
}
