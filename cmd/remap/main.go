// Command remap rewrites a Form C submission CSV into the column layout the
// import table expects.
package main

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"filingload/internal/remap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir, src, out, mappingPath string
		verbose                    bool
	)
	cmd := &cobra.Command{
		Use:           "remap",
		Short:         "Project a CSV onto a fixed target column list",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.SetOutput(cmd.OutOrStdout())
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			}

			mappings := remap.DefaultMappings
			if mappingPath != "" {
				m, err := remap.LoadMappings(mappingPath)
				if err != nil {
					log.Error(err)
					return err
				}
				mappings = m
			}
			if !filepath.IsAbs(src) {
				src = filepath.Join(dir, src)
			}
			if !filepath.IsAbs(out) {
				out = filepath.Join(dir, out)
			}
			if _, err := remap.RemapFile(src, out, mappings); err != nil {
				log.Error(err)
				return err
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&dir, "dir", "d", ".", "directory for relative --src and --out")
	f.StringVar(&src, "src", remap.DefaultSource, "input CSV")
	f.StringVar(&out, "out", remap.DefaultOutput, "output CSV")
	f.StringVarP(&mappingPath, "mapping", "m", "", "YAML list of {target, source} pairs; defaults to the submission layout")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	return cmd
}
