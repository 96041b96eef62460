package http

import (
	"time"

	"salmonsurvey/internal/core"
	"salmonsurvey/internal/report"
	"salmonsurvey/internal/services"
)

type (
	reportResponse struct {
		RunID        string             `json:"run_id,omitempty"`
		GeneratedAt  time.Time          `json:"generated_at"`
		LatestSurvey string             `json:"latest_survey,omitempty"`
		Columns      []string           `json:"columns"`
		Days         []dayResponse      `json:"days"`
		Totals       []core.YearlyTotal `json:"totals"`
	}

	// dayResponse is one table row; Values line up with Columns after "Survey Date".
	dayResponse struct {
		Date   core.Date `json:"date"`
		Values []int64   `json:"values"`
	}
)

// newReportResponse lays out the report newest day first, matching the rendered table.
func newReportResponse(rep services.Report, tax core.Taxonomy) reportResponse {
	table := report.BuildTable(rep.Summary, tax)
	days := make([]dayResponse, len(table.Rows))
	for i, row := range table.Rows {
		days[i] = dayResponse{Date: table.Dates[i], Values: row}
	}
	totals := rep.Totals
	if totals == nil {
		totals = []core.YearlyTotal{}
	}
	return reportResponse{
		RunID:        rep.RunID,
		GeneratedAt:  rep.GeneratedAt,
		LatestSurvey: rep.Summary.LatestDate().String(),
		Columns:      table.Columns,
		Days:         days,
		Totals:       totals,
	}
}
