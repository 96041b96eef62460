package sheets

import (
	"context"
	"time"

	"salmonsurvey/internal/core"
)

// TotalsRow is one appended line of yearly totals.
type TotalsRow struct {
	RunID        string
	GeneratedAt  time.Time
	LatestSurvey core.Date
	Totals       []core.YearlyTotal
}

// Ports for outbound adapters.
type (
	TotalsWriter interface {
		AppendTotals(ctx context.Context, row TotalsRow) (rowRef string, err error)
	}

	// RunChecker reports whether a run has already been written to the sink.
	RunChecker interface {
		HasRun(ctx context.Context, runID string) (bool, error)
	}

	TotalsSink interface {
		TotalsWriter
		RunChecker
	}
)
