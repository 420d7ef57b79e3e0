package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// ExtractJob tracks one document handled by the daemon queue.
type ExtractJob struct {
	ID            string         `sql:"id"`
	SourcePath    string         `sql:"source_path"`
	ContentHash   string         `sql:"content_hash"`
	Status        string         `sql:"status"`
	ExtractStatus string         `sql:"extract_status"`
	StartedAt     sql.NullTime   `sql:"started_at"`
	FinishedAt    sql.NullTime   `sql:"finished_at"`
	ErrorMessage  sql.NullString `sql:"error_message"`
}

type ExtractJobRepository interface {
	Start(ctx context.Context, sourcePath, contentHash string) (*ExtractJob, error)
	MarkRunning(ctx context.Context, jobID string) error
	FinishSuccess(ctx context.Context, jobID string, status constants.ExtractStatus) error
	FinishFailure(ctx context.Context, jobID string, message string) error
	Get(ctx context.Context, jobID string) (*ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	return &extractJobRepo{db: db, log: log, now: time.Now}
}

func (r *extractJobRepo) Start(ctx context.Context, sourcePath, contentHash string) (*ExtractJob, error) {
	job := &ExtractJob{
		ID:          uuid.NewString(),
		SourcePath:  sourcePath,
		ContentHash: contentHash,
		Status:      string(constants.JobStatusQueued),
		StartedAt:   sql.NullTime{Time: r.now().UTC(), Valid: true},
	}
	q, args := entsql.Dialect(r.db.Dialect()).
		Insert(ExtractJobsTable).
		Columns("id", "source_path", "content_hash", "status", "started_at").
		Values(job.ID, job.SourcePath, job.ContentHash, job.Status, job.StartedAt).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.log.Error("extract_job start failed", "source_path", sourcePath, "err", err)
		return nil, dbError("start extract job", err)
	}
	r.log.Info("extract_job started", "job_id", job.ID, "source_path", sourcePath)
	return job, nil
}

func (r *extractJobRepo) update(ctx context.Context, jobID string, set func(*entsql.UpdateBuilder)) error {
	u := entsql.Dialect(r.db.Dialect()).Update(ExtractJobsTable)
	set(u)
	q, args := u.Where(entsql.EQ("id", jobID)).Query()
	var res sql.Result
	if err := r.db.drv.Exec(ctx, q, args, &res); err != nil {
		return dbError("update extract job", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("extract job %s: %w", jobID, common.ErrNotFound)
	}
	return nil
}

func (r *extractJobRepo) MarkRunning(ctx context.Context, jobID string) error {
	err := r.update(ctx, jobID, func(u *entsql.UpdateBuilder) {
		u.Set("status", string(constants.JobStatusRunning))
	})
	if err != nil {
		r.log.Error("extract_job running failed", "job_id", jobID, "err", err)
	}
	return err
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID string, status constants.ExtractStatus) error {
	err := r.update(ctx, jobID, func(u *entsql.UpdateBuilder) {
		u.Set("status", string(constants.JobStatusStored)).
			Set("extract_status", string(status)).
			Set("finished_at", r.now().UTC())
	})
	if err != nil {
		r.log.Error("extract_job finish(STORED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (STORED)", "job_id", jobID, "extract_status", status)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID string, message string) error {
	err := r.update(ctx, jobID, func(u *entsql.UpdateBuilder) {
		u.Set("status", string(constants.JobStatusFailed)).
			Set("error_message", message).
			Set("finished_at", r.now().UTC())
	})
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) Get(ctx context.Context, jobID string) (*ExtractJob, error) {
	s := entsql.Dialect(r.db.Dialect()).
		Select("id", "source_path", "content_hash", "status", "extract_status", "started_at", "finished_at", "error_message").
		From(entsql.Table(ExtractJobsTable))
	s.Where(entsql.EQ(s.C("id"), jobID))

	q, args := s.Query()
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, dbError("get extract job", err)
	}
	defer rows.Close()
	var jobs []ExtractJob
	if err := entsql.ScanSlice(rows, &jobs); err != nil {
		return nil, dbError("scan extract job", err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("extract job %s: %w", jobID, common.ErrNotFound)
	}
	return &jobs[0], nil
}
