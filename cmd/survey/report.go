package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"salmonsurvey/internal/amqp"
	"salmonsurvey/internal/cli"
	"salmonsurvey/internal/config"
	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/report"
	"salmonsurvey/internal/services"
)

type reportOptions struct {
	format  string
	output  string
	xlsx    string
	publish bool
}

func newReportCmd(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Load the survey and print the totals table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "console" && opts.format != "html" {
				return unsupportedFormat(opts.format)
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "console", "output format: console or html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "also write the table to this Excel workbook")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "publish the yearly totals to AMQP_URL")
	return cmd
}

func runReport(ctx context.Context, cfg *config.Config, opts *reportOptions, stdout io.Writer) error {
	if opts.publish && !cfg.AMQPEnabled() {
		return fmt.Errorf("--publish needs AMQP_URL")
	}

	tax, err := cli.LoadTaxonomy(cfg)
	if err != nil {
		return err
	}
	store, err := cli.InitSQLite(ctx, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	stats, err := services.NewLoader(newFetcher(cfg), store).Load(ctx, cfg.SurveyURL)
	if err != nil {
		return fmt.Errorf("load survey: %w", err)
	}

	rep, err := services.NewReportService(store, tax).Report(ctx)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	rep.RunID = stats.RunID

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch opts.format {
	case "html":
		err = report.RenderHTMLWithMeta(out, rep.Summary, tax, report.PageMeta{RunID: rep.RunID, GeneratedAt: rep.GeneratedAt})
	default:
		err = report.Render(out, rep.Summary, tax)
	}
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if opts.xlsx != "" {
		if err := report.WriteXLSX(opts.xlsx, rep.Summary, tax); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Workbook written", applog.FieldComponent, applog.ComponentReport, "path", opts.xlsx)
	}

	if opts.publish {
		return publishTotals(ctx, cfg, rep)
	}
	return nil
}

func publishTotals(ctx context.Context, cfg *config.Config, rep services.Report) error {
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect AMQP: %w", err)
	}
	defer client.Close()

	msg := amqp.NewTotalsMessage(rep.RunID, rep.Summary.LatestDate(), rep.Totals)
	if err := client.PublishTotals(ctx, msg); err != nil {
		return fmt.Errorf("publish totals: %w", err)
	}
	return nil
}
