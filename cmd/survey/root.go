package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"salmonsurvey/internal/cli"
	"salmonsurvey/internal/config"
	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/source"
	"salmonsurvey/internal/storage"
)

type rootOptions struct {
	envFile  string
	url      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "survey",
		Short: "Salmon survey totals",
		Long: `survey loads the paginated salmon survey export, stores it in SQLite and
reports per-date counts with running and yearly totals.

Without a subcommand survey runs report with its default flags.

Example usage:
  survey report                      # print the table and yearly totals
  survey report --format html -o r.html
  survey serve                       # dashboard with periodic refresh
  survey worker                      # write published totals to Google Sheets`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envFile != "" {
				return cli.LoadEnvFile(opts.envFile)
			}
			return cli.LoadEnvFile()
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default .env)")
	root.PersistentFlags().StringVar(&opts.url, "url", "", "first page of the survey export (overrides SURVEY_URL)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	report := newReportCmd(opts)
	root.Args = cobra.NoArgs
	root.RunE = func(cmd *cobra.Command, args []string) error {
		report.SetContext(cmd.Context())
		return report.RunE(report, args)
	}
	root.AddCommand(report, newServeCmd(opts), newWorkerCmd(opts))
	return root
}

// loadConfig reads the environment, applies flag overrides, validates and
// installs the logger.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if o.url != "" {
		cfg.SurveyURL = o.url
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := cli.SetupLogger(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) source.PageFetcher {
	return source.NewHTTPClient(cfg.HTTPTimeout, source.WithToken(cfg.KoboAPIToken))
}

func closeStore(store *storage.SQLiteRepository) {
	if err := store.Close(); err != nil {
		slog.Warn("Close store", applog.FieldComponent, applog.ComponentStorage, applog.FieldError, err)
	}
}

func unsupportedFormat(format string) error {
	return fmt.Errorf("unsupported format %q: must be console or html", format)
}
