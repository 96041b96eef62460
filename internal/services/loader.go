package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"salmonsurvey/internal/core"
	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/metrics"
	"salmonsurvey/internal/source"
	"salmonsurvey/internal/storage"
)

var ErrPaginationLoop = errors.New("pagination loop")

// RecordStore is the storage side of a load.
type RecordStore interface {
	InsertRecords(ctx context.Context, records []core.Record) (int, error)
	RecordLoadRun(ctx context.Context, run storage.Run) error
}

// LoadStats summarises one Loader run.
type LoadStats struct {
	RunID    string
	Pages    int
	Fetched  int
	Inserted int
	// Skipped counts submissions without a survey date.
	Skipped  int
	Duration time.Duration
}

// Loader walks a paginated source and stores every record it finds.
type Loader struct {
	fetcher source.PageFetcher
	store   RecordStore
	now     func() time.Time
}

func NewLoader(fetcher source.PageFetcher, store RecordStore) *Loader {
	return &Loader{
		fetcher: fetcher,
		store:   store,
		now:     time.Now,
	}
}

// Load fetches pages starting at startURL until the source reports no next
// page. Pages are processed strictly in order and the first error aborts the
// run. Records already stored are skipped.
func (l *Loader) Load(ctx context.Context, startURL string) (LoadStats, error) {
	stats := LoadStats{RunID: uuid.NewString()}
	started := l.now()

	logger := slog.With(applog.FieldComponent, applog.ComponentLoader, applog.FieldRunID, stats.RunID)
	logger.InfoContext(ctx, "Survey load started", applog.FieldURL, startURL)

	err := l.walk(ctx, logger, startURL, &stats)

	finished := l.now()
	stats.Duration = finished.Sub(started)

	run := storage.Run{
		ID:         stats.RunID,
		SourceURL:  startURL,
		StartedAt:  started,
		FinishedAt: finished,
		Pages:      stats.Pages,
		Fetched:    stats.Fetched,
		Inserted:   stats.Inserted,
		Status:     storage.RunOK,
	}
	if err != nil {
		run.Status = storage.RunFailed
		run.Error = err.Error()
	}
	if recErr := l.store.RecordLoadRun(context.WithoutCancel(ctx), run); recErr != nil {
		logger.WarnContext(ctx, "Failed to record load run", applog.FieldError, recErr)
	}
	metrics.RecordLoad(run.Status, stats.Pages, stats.Fetched, stats.Inserted,
		stats.Duration.Seconds(), float64(finished.Unix()))

	if err != nil {
		metrics.RecordError(applog.OpLoad)
		logger.ErrorContext(ctx, "Survey load failed",
			applog.FieldPages, stats.Pages,
			applog.FieldFetched, stats.Fetched,
			applog.FieldError, err)
		return stats, err
	}

	logger.InfoContext(ctx, "Survey load completed",
		applog.FieldPages, stats.Pages,
		applog.FieldFetched, stats.Fetched,
		applog.FieldInserted, stats.Inserted,
		applog.FieldSkipped, stats.Skipped,
		applog.FieldDuration, stats.Duration.Milliseconds())

	return stats, nil
}

func (l *Loader) walk(ctx context.Context, logger *slog.Logger, url string, stats *LoadStats) error {
	visited := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, seen := visited[url]; seen {
			return fmt.Errorf("%w: %s already fetched", ErrPaginationLoop, url)
		}
		visited[url] = struct{}{}

		page, err := l.fetcher.FetchPage(ctx, url)
		if err != nil {
			return fmt.Errorf("fetch page %d: %w", stats.Pages+1, err)
		}
		stats.Pages++

		records := make([]core.Record, 0, len(page.Results))
		for _, raw := range page.Results {
			rec, err := raw.ToRecord()
			if errors.Is(err, source.ErrMissingDate) {
				stats.Skipped++
				logger.WarnContext(ctx, "Skipping submission without survey date",
					"record_id", string(raw.ID), applog.FieldPages, stats.Pages)
				continue
			}
			if err != nil {
				return fmt.Errorf("convert record on page %d: %w", stats.Pages, err)
			}
			records = append(records, rec)
		}
		stats.Fetched += len(records)

		inserted, err := l.store.InsertRecords(ctx, records)
		if err != nil {
			return fmt.Errorf("store page %d: %w", stats.Pages, err)
		}
		stats.Inserted += inserted

		if !page.HasNext() {
			return nil
		}
		url = page.Next
	}
}
