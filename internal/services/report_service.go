package services

import (
	"context"
	"fmt"
	"time"

	"salmonsurvey/internal/core"
)

// RecordReader reads back every stored record.
type RecordReader interface {
	ListRecords(ctx context.Context) ([]core.Record, error)
}

// Report is a built summary plus the yearly lines derived from it.
type Report struct {
	RunID       string             `json:"run_id,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     core.Summary       `json:"-"`
	Totals      []core.YearlyTotal `json:"totals"`
}

// ReportService aggregates the stored records on demand.
type ReportService struct {
	reader   RecordReader
	taxonomy core.Taxonomy
	now      func() time.Time
}

func NewReportService(reader RecordReader, taxonomy core.Taxonomy) *ReportService {
	return &ReportService{reader: reader, taxonomy: taxonomy, now: time.Now}
}

// Taxonomy returns the grouping the service aggregates with.
func (s *ReportService) Taxonomy() core.Taxonomy {
	return s.taxonomy
}

// Build reads all records and aggregates them. Nothing is cached.
func (s *ReportService) Build(ctx context.Context) (core.Summary, error) {
	records, err := s.reader.ListRecords(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list records: %w", err)
	}
	return core.Aggregate(records, s.taxonomy), nil
}

// Report builds the summary and its yearly totals.
func (s *ReportService) Report(ctx context.Context) (Report, error) {
	summary, err := s.Build(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		GeneratedAt: s.now().UTC(),
		Summary:     summary,
		Totals:      summary.YearlyTotals(s.taxonomy),
	}, nil
}
