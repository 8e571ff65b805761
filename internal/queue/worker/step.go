package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/naturlife/storefront/internal/domain/delivery"
	"github.com/naturlife/storefront/internal/domain/job"
	"github.com/naturlife/storefront/internal/jobs"
	"github.com/naturlife/storefront/internal/notifications"
)

// errPermanent marks failures a retry cannot fix.
var errPermanent = errors.New("permanent job failure")

// ProcessOne claims and runs at most one job. It reports whether a job was claimed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("claim: %w", err)
	}

	w.stats.Claimed()
	defer w.prom.JobStarted()()

	start := w.now()
	log := w.log.With("job_id", j.ID, "job_type", j.Type, "attempt", j.Attempts+1)

	runCtx, cancelRun := context.WithTimeout(ctx, w.cfg.JobTimeout)
	err = w.execute(runCtx, j)
	cancelRun()

	elapsed := w.now().Sub(start)
	w.stats.Observe(elapsed)

	if err != nil {
		result := w.handleFailure(ctx, j, err)
		w.prom.ObserveJob(j.Type, result, elapsed)
		log.Warn("job failed", "err", err, "result", result)
		return true, nil
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		w.prom.ObserveJob(j.Type, "error", elapsed)
		return true, fmt.Errorf("mark done %s: %w", j.ID, err)
	}

	w.stats.Done()
	w.prom.ObserveJob(j.Type, "done", elapsed)
	log.Info("job done", "duration_ms", elapsed.Milliseconds())
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)
	if err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}

	switch p := payload.(type) {
	case jobs.OrderConfirmationPayload:
		return w.deliver(ctx, j, delivery.KindOrderConfirmation, p.OrderID, p.Email, func(ctx context.Context) (string, error) {
			return w.notifier.SendOrderConfirmation(ctx, notifications.OrderConfirmationInput{
				OrderID:    p.OrderID,
				Email:      p.Email,
				Name:       p.Name,
				TotalCents: p.TotalCents,
				ItemCount:  p.ItemCount,
			})
		})

	case jobs.WelcomeEmailPayload:
		return w.deliver(ctx, j, delivery.KindWelcome, p.UserID, p.Email, func(ctx context.Context) (string, error) {
			return w.notifier.SendWelcome(ctx, notifications.WelcomeInput{
				UserID: p.UserID,
				Email:  p.Email,
				Name:   p.Name,
			})
		})

	default:
		return fmt.Errorf("%w: unhandled payload %T", errPermanent, payload)
	}
}

// deliver runs send at most once per (kind, subject) across every retry of the job.
func (w *Worker) deliver(
	ctx context.Context,
	j job.Job,
	kind delivery.Kind,
	subjectID, recipient string,
	send func(context.Context) (string, error),
) error {
	err := w.deliveries.TryStart(ctx, kind, subjectID, j.ID, recipient)
	switch {
	case errors.Is(err, delivery.ErrAlreadySent):
		w.stats.Skipped()
		return nil
	case err != nil:
		return err
	}

	msgID, err := send(ctx)
	if err != nil {
		if markErr := w.deliveries.MarkFailed(context.WithoutCancel(ctx), kind, subjectID, err.Error()); markErr != nil {
			w.log.Error("mark delivery failed", "job_id", j.ID, "err", markErr)
		}
		return err
	}

	var provider *string
	if msgID != "" {
		provider = &msgID
	}
	return w.deliveries.MarkSent(context.WithoutCancel(ctx), kind, subjectID, provider)
}

// handleFailure either schedules a retry or parks the job as failed. It returns the
// metric result label.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) string {
	msg := truncate(cause.Error(), 1000)
	attempt := j.Attempts + 1

	if errors.Is(cause, errPermanent) || attempt >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, msg); err != nil {
			w.log.Error("mark job failed", "job_id", j.ID, "err", err)
		}
		w.stats.Failed()
		return "failed"
	}

	runAt := w.now().Add(w.backoff(j.Attempts))
	if err := w.repo.Reschedule(ctx, j.ID, runAt, msg); err != nil {
		w.log.Error("reschedule job", "job_id", j.ID, "err", err)
	}
	w.stats.Rescheduled()
	return "retry"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
