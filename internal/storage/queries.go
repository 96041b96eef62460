package storage

import (
	"context"
	"database/sql"
)

const insertRecord = `
INSERT OR IGNORE INTO survey_records (id, survey_date, quantity, status, category)
VALUES (?, ?, ?, ?, ?)
`

type InsertRecordParams struct {
	ID         string
	SurveyDate string
	Quantity   int64
	Status     string
	Category   string
}

// InsertRecord returns the number of affected rows: 0 when the id already exists.
func (q *Queries) InsertRecord(ctx context.Context, arg InsertRecordParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertRecord,
		arg.ID,
		arg.SurveyDate,
		arg.Quantity,
		arg.Status,
		arg.Category,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listRecords = `
SELECT id, survey_date, quantity, status, category
FROM survey_records
ORDER BY survey_date, id
`

func (q *Queries) ListRecords(ctx context.Context) ([]SurveyRecord, error) {
	rows, err := q.db.QueryContext(ctx, listRecords)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SurveyRecord
	for rows.Next() {
		var i SurveyRecord
		if err := rows.Scan(
			&i.ID,
			&i.SurveyDate,
			&i.Quantity,
			&i.Status,
			&i.Category,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRecords = `SELECT COUNT(*) FROM survey_records`

func (q *Queries) CountRecords(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRecords)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const latestSurveyDate = `SELECT MAX(survey_date) FROM survey_records`

func (q *Queries) LatestSurveyDate(ctx context.Context) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, latestSurveyDate)
	var latest sql.NullString
	err := row.Scan(&latest)
	return latest, err
}

const createLoadRun = `
INSERT INTO load_runs (id, source_url, started_at, finished_at, pages, fetched, inserted, status, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateLoadRunParams struct {
	ID         string
	SourceUrl  string
	StartedAt  string
	FinishedAt string
	Pages      int64
	Fetched    int64
	Inserted   int64
	Status     string
	Error      string
}

func (q *Queries) CreateLoadRun(ctx context.Context, arg CreateLoadRunParams) error {
	_, err := q.db.ExecContext(ctx, createLoadRun,
		arg.ID,
		arg.SourceUrl,
		arg.StartedAt,
		arg.FinishedAt,
		arg.Pages,
		arg.Fetched,
		arg.Inserted,
		arg.Status,
		arg.Error,
	)
	return err
}

const getLastLoadRun = `
SELECT id, source_url, started_at, finished_at, pages, fetched, inserted, status, error
FROM load_runs
ORDER BY started_at DESC, rowid DESC
LIMIT 1
`

func (q *Queries) GetLastLoadRun(ctx context.Context) (LoadRun, error) {
	row := q.db.QueryRowContext(ctx, getLastLoadRun)
	var i LoadRun
	err := row.Scan(
		&i.ID,
		&i.SourceUrl,
		&i.StartedAt,
		&i.FinishedAt,
		&i.Pages,
		&i.Fetched,
		&i.Inserted,
		&i.Status,
		&i.Error,
	)
	return i, err
}
