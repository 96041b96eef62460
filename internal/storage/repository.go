package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salmonsurvey/internal/core"

	_ "modernc.org/sqlite"
)

// DefaultDSN is a named shared-cache in-memory database. It lives as long
// as the repository keeps a connection open.
const DefaultDSN = "file:survey?mode=memory&cache=shared"

var ErrNotFound = errors.New("not found")

// LoadRun status values.
const (
	RunOK     = "ok"
	RunFailed = "failed"
)

// Run is the audit row of one Loader invocation.
type Run struct {
	ID         string
	SourceURL  string
	StartedAt  time.Time
	FinishedAt time.Time
	Pages      int
	Fetched    int
	Inserted   int
	Status     string
	Error      string
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// NewSQLiteRepository opens dsn, applies migrations and returns the repository.
// An empty dsn or ":memory:" selects DefaultDSN.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if dsn == "" || dsn == ":memory:" {
		dsn = DefaultDSN
	}

	memory := isMemoryDSN(dsn)
	if !memory && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if memory {
		// One pinned connection keeps the shared-cache database alive and
		// serialises writers, which shared cache would otherwise reject.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, "mode=memory")
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertRecords stores records in a single transaction. Records whose id is
// already present are skipped; the count of newly stored rows is returned.
func (r *SQLiteRepository) InsertRecords(ctx context.Context, records []core.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := r.queries.WithTx(tx)
	inserted := 0
	for _, rec := range records {
		n, err := qtx.InsertRecord(ctx, InsertRecordParams{
			ID:         rec.ID,
			SurveyDate: rec.Date.String(),
			Quantity:   rec.Quantity,
			Status:     rec.Status,
			Category:   rec.Category,
		})
		if err != nil {
			return 0, fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Survey records stored",
		"received", len(records),
		"inserted", inserted,
		"skipped", len(records)-inserted)

	return inserted, nil
}

// ListRecords returns every stored record ordered by survey date, then id.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.Record, error) {
	rows, err := r.queries.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.SurveyDate)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", row.ID, err)
		}
		records = append(records, core.Record{
			ID:       row.ID,
			Date:     date,
			Quantity: row.Quantity,
			Status:   row.Status,
			Category: row.Category,
		})
	}
	return records, nil
}

func (r *SQLiteRepository) CountRecords(ctx context.Context) (int, error) {
	n, err := r.queries.CountRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return int(n), nil
}

// LatestSurveyDate returns the most recent survey date, or ErrNotFound when the store is empty.
func (r *SQLiteRepository) LatestSurveyDate(ctx context.Context) (core.Date, error) {
	latest, err := r.queries.LatestSurveyDate(ctx)
	if err != nil {
		return core.Date{}, fmt.Errorf("latest survey date: %w", err)
	}
	if !latest.Valid {
		return core.Date{}, ErrNotFound
	}
	return core.ParseDate(latest.String)
}

// RecordLoadRun appends run to the audit table.
func (r *SQLiteRepository) RecordLoadRun(ctx context.Context, run Run) error {
	status := run.Status
	if status == "" {
		status = RunOK
	}
	err := r.queries.CreateLoadRun(ctx, CreateLoadRunParams{
		ID:         run.ID,
		SourceUrl:  run.SourceURL,
		StartedAt:  run.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt: run.FinishedAt.UTC().Format(time.RFC3339Nano),
		Pages:      int64(run.Pages),
		Fetched:    int64(run.Fetched),
		Inserted:   int64(run.Inserted),
		Status:     status,
		Error:      run.Error,
	})
	if err != nil {
		return fmt.Errorf("record load run %s: %w", run.ID, err)
	}
	return nil
}

// LastLoadRun returns the most recently started run, or ErrNotFound.
func (r *SQLiteRepository) LastLoadRun(ctx context.Context) (Run, error) {
	row, err := r.queries.GetLastLoadRun(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get last load run: %w", err)
	}

	started, err := time.Parse(time.RFC3339Nano, row.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	finished, err := time.Parse(time.RFC3339Nano, row.FinishedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}

	return Run{
		ID:         row.ID,
		SourceURL:  row.SourceUrl,
		StartedAt:  started,
		FinishedAt: finished,
		Pages:      int(row.Pages),
		Fetched:    int(row.Fetched),
		Inserted:   int(row.Inserted),
		Status:     row.Status,
		Error:      row.Error,
	}, nil
}
