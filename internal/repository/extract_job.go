package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-list/constants"
	"github.com/joseph-ayodele/material-list/internal/entity"
)

const defaultListLimit = 20

type JobRepository interface {
	Record(ctx context.Context, rec entity.JobRecord) error
	List(ctx context.Context, limit int) ([]entity.JobRecord, error)
}

type jobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewJobRepository(db *DB, log *slog.Logger) JobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &jobRepo{db: db, log: log}
}

func (r *jobRepo) Record(ctx context.Context, rec entity.JobRecord) error {
	q := r.db.Rebind(`INSERT INTO extract_job
		(id, input_path, output_path, status, error_kind, message, entries, pages, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.SQL.ExecContext(ctx, q,
		rec.ID.String(),
		rec.InputPath,
		rec.OutputPath,
		string(rec.Status),
		rec.ErrorKind,
		rec.Message,
		rec.Entries,
		rec.Pages,
		rec.StartedAt.UnixMilli(),
		rec.FinishedAt.UnixMilli(),
	)
	if err != nil {
		r.log.Error("extract_job insert failed", "job_id", rec.ID, "err", err)
		return fmt.Errorf("record job: %w", err)
	}
	r.log.Info("extract_job recorded", "job_id", rec.ID, "status", rec.Status)
	return nil
}

// List returns the most recently finished jobs first.
func (r *jobRepo) List(ctx context.Context, limit int) ([]entity.JobRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := r.db.Rebind(`SELECT id, input_path, output_path, status, error_kind, message, entries, pages, started_at, finished_at
		FROM extract_job ORDER BY finished_at DESC, id LIMIT ?`)
	rows, err := r.db.SQL.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []entity.JobRecord
	for rows.Next() {
		var (
			rec               entity.JobRecord
			id, status        string
			started, finished int64
		)
		if err := rows.Scan(&id, &rec.InputPath, &rec.OutputPath, &status, &rec.ErrorKind, &rec.Message,
			&rec.Entries, &rec.Pages, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("job id %q: %w", id, err)
		}
		rec.Status = constants.JobStatus(status)
		rec.StartedAt = time.UnixMilli(started).UTC()
		rec.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
