package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"salmonsurvey/internal/amqp"
	"salmonsurvey/internal/cli"
	"salmonsurvey/internal/config"
	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/worker"
)

func newWorkerCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Append published yearly totals to the totals sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			return runWorker(cmd.Context(), cfg)
		},
	}
}

func runWorker(ctx context.Context, cfg *config.Config) error {
	if !cfg.AMQPEnabled() {
		return errors.New("worker needs AMQP_URL")
	}

	sink, err := cli.NewTotalsSink(ctx, cfg)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	slog.InfoContext(ctx, "Starting totals worker",
		applog.FieldComponent, applog.ComponentWorker,
		"queue", cfg.AMQPQueue,
		"sheets", cfg.SheetsEnabled())

	w := worker.NewTotalsWorker(sink)
	if err := client.ConsumeTotals(ctx, w.HandleTotalsMessage); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.InfoContext(ctx, "Totals worker stopped", applog.FieldComponent, applog.ComponentWorker)
	return nil
}
