package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"salmonsurvey/internal/amqp"
	"salmonsurvey/internal/cli"
	"salmonsurvey/internal/config"
	apphttp "salmonsurvey/internal/http"
	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/metrics"
	"salmonsurvey/internal/services"
)

const stopTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the report and refresh it on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	tax, err := cli.LoadTaxonomy(cfg)
	if err != nil {
		return err
	}
	store, err := cli.InitSQLite(ctx, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	loader := services.NewLoader(newFetcher(cfg), store)
	reports := services.NewReportService(store, tax)
	srv := apphttp.NewServer(":"+cfg.Port, reports, cfg.ReportCacheTTL)

	refresher := services.NewRefresher(loader, reports, services.RefresherConfig{
		URL:      cfg.SurveyURL,
		Interval: cfg.RefreshInterval,
	})
	refresher.OnRefresh(func(ctx context.Context, _ services.LoadStats, rep services.Report) {
		srv.StoreReport(ctx, rep)
	})

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer client.Close()
		refresher.OnRefresh(publishHook(client))
	}

	slog.InfoContext(ctx, "Starting survey dashboard",
		applog.FieldComponent, applog.ComponentApp,
		"port", cfg.Port,
		"refresh_interval", cfg.RefreshInterval,
		applog.FieldURL, cfg.SurveyURL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		if err := refresher.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), stopTimeout)
		defer cancel()
		return refresher.Stop(stopCtx)
	})
	return g.Wait()
}

// publishHook publishes every refreshed set of yearly totals. A failed
// publish is logged and the next refresh tries again.
func publishHook(client *amqp.Client) services.RefreshHook {
	return func(ctx context.Context, _ services.LoadStats, rep services.Report) {
		msg := amqp.NewTotalsMessage(rep.RunID, rep.Summary.LatestDate(), rep.Totals)
		if err := client.PublishTotals(ctx, msg); err != nil {
			metrics.RecordError(applog.OpPublish)
			slog.WarnContext(ctx, "Publish totals failed",
				applog.FieldComponent, applog.ComponentAMQP,
				applog.FieldRunID, rep.RunID,
				applog.FieldError, err)
		}
	}
}
