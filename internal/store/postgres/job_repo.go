// Package postgres implements every store port against a raw database/sql
// + lib/pq connection, grounded on the teacher's features/job and
// features/source PostgresRepo idiom: plain $-placeholder SQL, no ORM.
// Every Save enforces the optimistic-concurrency protocol from spec §4.7:
// version 0 inserts when no row with that id exists; otherwise it updates
// with a CAS WHERE clause on the aggregate's version whose
// RowsAffected()==0 surfaces errs.ConcurrencyError.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cryptoganster/content-pipeline/internal/domain/job"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type JobRepo struct {
	db *sql.DB
}

func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) Save(ctx context.Context, j *job.Job) error {
	sourceConfig, err := json.Marshal(j.SourceConfig)
	if err != nil {
		return err
	}
	metrics, err := json.Marshal(j.Metrics)
	if err != nil {
		return err
	}
	errorRecords, err := json.Marshal(j.Errors)
	if err != nil {
		return err
	}

	if j.Version == 0 {
		query := `INSERT INTO ingestion_jobs
			(id, source_id, status, scheduled_at, executed_at, completed_at, metrics, errors, source_config, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)
			ON CONFLICT (id) DO NOTHING`
		res, err := r.db.ExecContext(ctx, query, j.ID, j.SourceID, j.Status, j.ScheduledAt, j.ExecutedAt, j.CompletedAt, metrics, errorRecords, sourceConfig)
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 1 {
			return nil
		}
	}

	query := `UPDATE ingestion_jobs
		SET status = $1, executed_at = $2, completed_at = $3, metrics = $4, errors = $5, version = version + 1
		WHERE id = $6 AND version = $7`
	res, err := r.db.ExecContext(ctx, query, j.Status, j.ExecutedAt, j.CompletedAt, metrics, errorRecords, j.ID, j.Version)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.NewConcurrency("IngestionJob", j.ID, j.Version)
	}
	j.Version++
	return nil
}

func (r *JobRepo) Get(ctx context.Context, id string) (*job.Job, error) {
	query := `SELECT id, source_id, status, scheduled_at, executed_at, completed_at, metrics, errors, source_config, version
		FROM ingestion_jobs WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound("IngestionJob", id)
	}
	return j, err
}

func (r *JobRepo) ListBySource(ctx context.Context, sourceID string) ([]*job.Job, error) {
	query := `SELECT id, source_id, status, scheduled_at, executed_at, completed_at, metrics, errors, source_config, version
		FROM ingestion_jobs WHERE source_id = $1 ORDER BY scheduled_at DESC`
	return r.queryJobs(ctx, query, sourceID)
}

func (r *JobRepo) ListByStatus(ctx context.Context, status job.Status) ([]*job.Job, error) {
	query := `SELECT id, source_id, status, scheduled_at, executed_at, completed_at, metrics, errors, source_config, version
		FROM ingestion_jobs WHERE status = $1 ORDER BY scheduled_at DESC`
	return r.queryJobs(ctx, query, status)
}

func (r *JobRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingestion_jobs`).Scan(&count)
	return count, err
}

func (r *JobRepo) queryJobs(ctx context.Context, query string, arg any) ([]*job.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows, both of which expose Scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*job.Job, error) {
	var j job.Job
	var metrics, errorRecords, sourceConfig []byte
	err := row.Scan(&j.ID, &j.SourceID, &j.Status, &j.ScheduledAt, &j.ExecutedAt, &j.CompletedAt, &metrics, &errorRecords, &sourceConfig, &j.Version)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metrics, &j.Metrics); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(errorRecords, &j.Errors); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sourceConfig, &j.SourceConfig); err != nil {
		return nil, err
	}
	return &j, nil
}
