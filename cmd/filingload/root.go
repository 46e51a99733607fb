package main

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"filingload/internal/config"
)

// flags shared by load and check.
type flags struct {
	configPath string
	envFiles   []string
	verbose    bool

	sourceDir   string
	storageKind string
	dsn         string
	writeMode   string
	delimiter   string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "filingload",
		Short: "Load delimited regulatory filing exports into database tables",
		Long: `filingload validates and loads the quarterly Form C data set files
(SUBMISSION, ISSUER_INFORMATION, DISCLOSURE, SIGNATURE) into relational tables.

Files are processed in config order and the run stops at the first file that
fails. Exit status is 1 when any file fails or the config is invalid.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.OutOrStdout(), f.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "run config (YAML or JSON); defaults to the built-in Form C layout")
	pf.StringSliceVar(&f.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the config")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logs")
	pf.StringVar(&f.sourceDir, "source-dir", "", "directory holding the input files")
	pf.StringVar(&f.storageKind, "storage", "", "storage backend kind (postgres, sqlite, mssql, mysql)")
	pf.StringVar(&f.dsn, "dsn", "", "database connection string")
	pf.StringVar(&f.writeMode, "write-mode", "", "replace or append")
	pf.StringVar(&f.delimiter, "delimiter", "", `field delimiter ("tab", "comma" or one character)`)

	root.AddCommand(newLoadCmd(f), newCheckCmd(f))
	return root
}

func setupLogging(w io.Writer, verbose bool) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig resolves the run config: dotenv, file, environment, then flags.
// Validation issues are logged; errors make it fail.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	if err := config.LoadEnv(f.envFiles...); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	fl := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if fl.Changed(name) {
			*dst = v
		}
	}
	override("source-dir", &cfg.SourceDir, f.sourceDir)
	override("storage", &cfg.Storage.Kind, f.storageKind)
	override("dsn", &cfg.Storage.DSN, f.dsn)
	override("write-mode", &cfg.WriteMode, f.writeMode)
	override("delimiter", &cfg.Delimiter, f.delimiter)

	issues := config.Validate(cfg)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			log.Errorf("config: %s: %s", iss.Path, iss.Message)
		} else {
			log.Warnf("config: %s: %s", iss.Path, iss.Message)
		}
	}
	if config.HasErrors(issues) {
		return cfg, fmt.Errorf("config: invalid (%d issues)", len(issues))
	}
	return cfg, nil
}
