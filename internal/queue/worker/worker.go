// Package worker drains the jobs table: it claims runnable jobs, hands them to the
// notifier and records the outcome with backoff on transient failures.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/naturlife/storefront/internal/domain/delivery"
	"github.com/naturlife/storefront/internal/domain/job"
	"github.com/naturlife/storefront/internal/notifications"
	"github.com/naturlife/storefront/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

// DeliveryLedger dedupes sends across job retries.
type DeliveryLedger interface {
	TryStart(ctx context.Context, kind delivery.Kind, subjectID, jobID, recipient string) error
	MarkSent(ctx context.Context, kind delivery.Kind, subjectID string, providerMessageID *string) error
	MarkFailed(ctx context.Context, kind delivery.Kind, subjectID, errMsg string) error
}

type Config struct {
	WorkerID      string
	PollInterval  time.Duration
	Concurrency   int
	JobTimeout    time.Duration
	LockTTL       time.Duration
	ReapInterval  time.Duration
	ShutdownGrace time.Duration
}

func (c Config) withDefaults() Config {
	if c.WorkerID == "" {
		c.WorkerID = "worker"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 10 * time.Second
	}
	if c.LockTTL <= 0 {
		c.LockTTL = time.Minute
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = 30 * time.Second
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 10 * time.Second
	}
	return c
}

type Worker struct {
	cfg        Config
	repo       JobsRepository
	deliveries DeliveryLedger
	notifier   notifications.Notifier

	log   *slog.Logger
	prom  *observability.Prom
	stats *observability.JobStats

	now     func() time.Time
	backoff func(attempt int) time.Duration

	readyMu sync.RWMutex
	ready   bool
}

func New(
	cfg Config,
	repo JobsRepository,
	deliveries DeliveryLedger,
	notifier notifications.Notifier,
	log *slog.Logger,
	prom *observability.Prom,
) *Worker {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()

	return &Worker{
		cfg:        cfg,
		repo:       repo,
		deliveries: deliveries,
		notifier:   notifier,
		log:        log.With("component", "worker", "worker_id", cfg.WorkerID),
		prom:       prom,
		stats:      observability.NewJobStats(),
		now:        time.Now,
		backoff:    ExponentialBackoff,
	}
}

func (w *Worker) Stats() observability.JobStatsSnapshot {
	return w.stats.Snapshot()
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

// Run blocks until ctx is cancelled. In-flight jobs get ShutdownGrace to finish on a
// context detached from ctx; after that they are abandoned to the stale-lock reaper.
func (w *Worker) Run(ctx context.Context) error {
	// jobs keep running after ctx is cancelled, until the grace period ends
	jobCtx, cancelJobs := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelJobs()

	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx, jobCtx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.reapLoop(ctx)
	}()

	w.setReady(true)
	w.log.Info("worker started", "concurrency", w.cfg.Concurrency)

	<-ctx.Done()
	w.setReady(false)
	w.log.Info("worker draining", "grace", w.cfg.ShutdownGrace.String())

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(w.cfg.ShutdownGrace):
		cancelJobs()
		<-done
		return errors.New("worker: shutdown grace exceeded")
	}
}

func (w *Worker) loop(ctx, jobCtx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// drain while there is work, then wait for the next tick
		for ctx.Err() == nil {
			processed, err := w.ProcessOne(jobCtx)
			if err != nil {
				w.log.Error("process job", "err", err)
			}
			if !processed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reap(ctx)
		}
	}
}

func (w *Worker) reap(ctx context.Context) {
	n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
	if err != nil {
		w.log.Error("requeue stale jobs", "err", err)
		return
	}
	if n > 0 {
		w.stats.Requeued(n)
		w.log.Warn("requeued stale jobs", "count", n)
	}
}
