package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pricehunt-engine/internal/domain"
)

func (d *DB) CreateJob(ctx context.Context, productID string) (domain.SearchJob, error) {
	now := time.Now().UTC()
	j := domain.SearchJob{
		ID:        uuid.NewString(),
		ProductID: productID,
		Status:    domain.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := d.Pool.ExecContext(ctx, d.q(`
INSERT INTO search_jobs(id, product_id, status, progress, created_at, updated_at)
VALUES(?,?,?,?,?,?);`),
		j.ID, j.ProductID, string(j.Status), 0, formatTime(now), formatTime(now))
	if err != nil {
		return domain.SearchJob{}, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

func (d *DB) GetJob(ctx context.Context, id string) (domain.SearchJob, error) {
	var (
		j                    domain.SearchJob
		status               string
		createdAt, updatedAt string
	)
	err := d.Pool.QueryRowContext(ctx, d.q(`
SELECT id, product_id, status, progress, created_at, updated_at
FROM search_jobs
WHERE id = ?;`), id).Scan(&j.ID, &j.ProductID, &status, &j.Progress, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SearchJob{}, ErrNotFound
	}
	if err != nil {
		return domain.SearchJob{}, err
	}
	j.Status, err = domain.ParseJobStatus(status)
	if err != nil {
		return domain.SearchJob{}, err
	}
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return j, nil
}

// TransitionJob moves a job to status `to`. The UPDATE only matches rows whose
// current status is a legal predecessor, so concurrent writers cannot revert
// a terminal job.
func (d *DB) TransitionJob(ctx context.Context, id string, to domain.JobStatus) error {
	preds := domain.Predecessors(to)
	if len(preds) == 0 {
		return fmt.Errorf("%w: nothing leads to %s", ErrInvalidTransition, to)
	}

	marks := strings.TrimSuffix(strings.Repeat("?,", len(preds)), ",")
	args := []any{string(to), formatTime(time.Now()), id}
	for _, p := range preds {
		args = append(args, string(p))
	}

	res, err := d.Pool.ExecContext(ctx, d.q(`
UPDATE search_jobs
SET status = ?, updated_at = ?
WHERE id = ? AND status IN (`+marks+`);`), args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	cur, err := d.GetJob(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, cur.Status, to)
}

// UnfinishedJobs lists jobs still PENDING or RUNNING. After a restart these
// have no worker behind them.
func (d *DB) UnfinishedJobs(ctx context.Context) ([]string, error) {
	rows, err := d.Pool.QueryContext(ctx, d.q(`
SELECT id FROM search_jobs
WHERE status IN (?, ?)
ORDER BY created_at ASC;`), string(domain.JobPending), string(domain.JobRunning))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AppendLog adds one entry to the job's log and sets its progress field.
func (d *DB) AppendLog(ctx context.Context, jobID string, e domain.LogEntry) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	if err := tx.QueryRowContext(ctx, d.q(`
SELECT COALESCE(MAX(seq), 0) + 1 FROM search_job_logs WHERE job_id = ?;`), jobID).Scan(&seq); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, d.q(`
INSERT INTO search_job_logs(job_id, seq, at, message, progress)
VALUES(?,?,?,?,?);`), jobID, seq, formatTime(e.Timestamp), e.Message, e.Progress); err != nil {
		return fmt.Errorf("insert log: %w", err)
	}

	res, err := tx.ExecContext(ctx, d.q(`
UPDATE search_jobs SET progress = ?, updated_at = ? WHERE id = ?;`),
		e.Progress, formatTime(e.Timestamp), jobID)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (d *DB) ListLogs(ctx context.Context, jobID string) ([]domain.LogEntry, error) {
	rows, err := d.Pool.QueryContext(ctx, d.q(`
SELECT seq, at, message, progress
FROM search_job_logs
WHERE job_id = ?
ORDER BY seq ASC;`), jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var at string
		if err := rows.Scan(&e.Seq, &at, &e.Message, &e.Progress); err != nil {
			return nil, err
		}
		e.Timestamp = parseTime(at)
		out = append(out, e)
	}
	return out, rows.Err()
}
