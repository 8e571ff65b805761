package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/job"
	"github.com/naturlife/storefront/internal/utils"
)

type JobAdminStore interface {
	ListCursor(ctx context.Context, status *string, limit int, afterUpdatedAt time.Time, afterID string) ([]job.Job, *string, bool, error)
	GetByID(ctx context.Context, id string) (job.Job, error)
	Retry(ctx context.Context, id string) error
	RetryManyFailed(ctx context.Context, limit int) (int64, error)
}

type JobPage struct {
	Items      []job.Job `json:"items"`
	NextCursor *string   `json:"nextCursor,omitempty"`
	HasMore    bool      `json:"hasMore"`
}

// AdminJobs exposes the background queue (order confirmations, welcome mail) to operators.
type AdminJobs struct {
	guard *Guard
	jobs  JobAdminStore
	log   *slog.Logger
}

func NewAdminJobs(guard *Guard, jobs JobAdminStore, log *slog.Logger) *AdminJobs {
	if log == nil {
		log = slog.Default()
	}
	return &AdminJobs{guard: guard, jobs: jobs, log: log}
}

func (s *AdminJobs) List(ctx context.Context, raw, status string, limit int, cursor string) (JobPage, error) {
	if _, err := s.guard.RequireAdmin(raw); err != nil {
		return JobPage{}, err
	}

	var st *string
	if status != "" {
		switch job.Status(status) {
		case job.StatusPending, job.StatusProcessing, job.StatusDone, job.StatusFailed:
			st = &status
		default:
			return JobPage{}, apperr.Validation("invalid_status", "status must be one of: pending, processing, done, failed")
		}
	}

	afterAt, afterID := utils.MaxCursorTime, utils.MaxCursorID
	if cursor != "" {
		c, err := utils.DecodeJobCursor(cursor)
		if err != nil {
			return JobPage{}, apperr.Validation("invalid_cursor", "Cursor is invalid.")
		}
		afterAt, afterID = c.UpdatedAt, c.ID
	}

	items, next, more, err := s.jobs.ListCursor(ctx, st, clampLimit(limit), afterAt, afterID)
	if err != nil {
		return JobPage{}, apperr.Internal(err)
	}
	return JobPage{Items: items, NextCursor: next, HasMore: more}, nil
}

func (s *AdminJobs) Get(ctx context.Context, raw, id string) (job.Job, error) {
	if _, err := s.guard.RequireAdmin(raw); err != nil {
		return job.Job{}, err
	}
	if !utils.IsUUID(id) {
		return job.Job{}, apperr.Validation("invalid_id", "Job id must be a valid UUID.")
	}

	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return job.Job{}, apperr.NotFound("job_not_found", "Job not found.")
		}
		return job.Job{}, apperr.Internal(err)
	}
	return j, nil
}

func (s *AdminJobs) Retry(ctx context.Context, raw, id string) error {
	actor, err := s.guard.RequireAdmin(raw)
	if err != nil {
		return err
	}
	if !utils.IsUUID(id) {
		return apperr.Validation("invalid_id", "Job id must be a valid UUID.")
	}

	if err := s.jobs.Retry(ctx, id); err != nil {
		switch {
		case errors.Is(err, job.ErrJobNotFound):
			return apperr.NotFound("job_not_found", "Job not found.")
		case errors.Is(err, job.ErrJobNotFailed):
			return apperr.Conflict("job_not_failed", "Only failed jobs can be retried.")
		}
		return apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "job requeued", "actor_id", actor.UserID, "job_id", id)
	return nil
}

func (s *AdminJobs) RetryFailed(ctx context.Context, raw string, limit int) (int64, error) {
	actor, err := s.guard.RequireAdmin(raw)
	if err != nil {
		return 0, err
	}

	n, err := s.jobs.RetryManyFailed(ctx, limit)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "failed jobs requeued", "actor_id", actor.UserID, "count", n)
	return n, nil
}
