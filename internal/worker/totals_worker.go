package worker

import (
	"context"
	"fmt"
	"log/slog"

	"salmonsurvey/internal/amqp"
	"salmonsurvey/internal/cache"
	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/metrics"
	"salmonsurvey/internal/sheets"
)

const seenRunsSize = 1024

// TotalsWorker writes published yearly totals to a sheets sink, once per run.
type TotalsWorker struct {
	sink sheets.TotalsSink
	seen *cache.LRUCache[string]
}

func NewTotalsWorker(sink sheets.TotalsSink) *TotalsWorker {
	return &TotalsWorker{
		sink: sink,
		seen: cache.NewLRUCache[string](seenRunsSize, 0),
	}
}

// HandleTotalsMessage appends the message to the sink. Runs already written,
// in this process or in the sink itself, are skipped.
func (w *TotalsWorker) HandleTotalsMessage(ctx context.Context, msg *amqp.TotalsMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if ref, ok := w.seen.Get(msg.RunID); ok {
		slog.DebugContext(ctx, "Skipping already written run",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldRunID, msg.RunID,
			applog.FieldSheetsRef, ref)
		return nil
	}

	written, err := w.sink.HasRun(ctx, msg.RunID)
	if err != nil {
		metrics.RecordError(applog.OpAppend)
		return fmt.Errorf("check run in sink: %w", err)
	}
	if written {
		w.seen.Set(msg.RunID, "")
		slog.InfoContext(ctx, "Run already present in sink",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldRunID, msg.RunID)
		return nil
	}

	ref, err := w.sink.AppendTotals(ctx, sheets.TotalsRow{
		RunID:        msg.RunID,
		GeneratedAt:  msg.GeneratedAt,
		LatestSurvey: msg.LatestSurvey,
		Totals:       msg.Totals,
	})
	if err != nil {
		metrics.RecordError(applog.OpAppend)
		return fmt.Errorf("append totals: %w", err)
	}
	w.seen.Set(msg.RunID, ref)

	slog.InfoContext(ctx, "Totals written",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldRunID, msg.RunID,
		applog.FieldLatestSurvey, msg.LatestSurvey.String(),
		applog.FieldSheetsRef, ref)
	return nil
}
