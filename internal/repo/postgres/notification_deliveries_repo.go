package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naturlife/storefront/internal/domain/delivery"
	"github.com/naturlife/storefront/internal/observability"
)

// NotificationDeliveriesRepo records one delivery per (kind, subject) so a retried job never
// sends the same confirmation twice.
type NotificationDeliveriesRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewNotificationDeliveriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotificationDeliveriesRepo {
	return &NotificationDeliveriesRepo{observed: observed{prom: prom}, pool: pool}
}

// TryStart claims the right to send. It returns delivery.ErrAlreadySent or delivery.ErrInProgress
// when another attempt owns or finished the delivery.
func (r *NotificationDeliveriesRepo) TryStart(ctx context.Context, kind delivery.Kind, subjectID, jobID, recipient string) error {
	// 1) insert if missing
	err := r.observe("deliveries.try_start.insert", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO notification_deliveries (kind, subject_id, job_id, recipient, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'sending', NOW(), NOW())`,
			string(kind), subjectID, jobID, recipient)
		return err
	})
	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err) {
		return err
	}

	// 2) a failed row can be claimed again; only one worker wins the flip back to sending
	var claimed bool
	err = r.observe("deliveries.try_start.reclaim", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE notification_deliveries
			SET status = 'sending',
			    job_id = $3,
			    recipient = $4,
			    last_error = NULL,
			    updated_at = NOW()
			WHERE kind = $1 AND subject_id = $2 AND status = 'failed'`,
			string(kind), subjectID, jobID, recipient)
		claimed = tag.RowsAffected() == 1
		return err
	})
	if err != nil {
		return err
	}
	if claimed {
		return nil
	}

	// 3) already sent, or someone else is sending
	var (
		status string
		sentAt *time.Time
	)
	err = r.observe("deliveries.try_start.status", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT status, sent_at
			FROM notification_deliveries
			WHERE kind = $1 AND subject_id = $2`,
			string(kind), subjectID).Scan(&status, &sentAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	if sentAt != nil || status == "sent" {
		return delivery.ErrAlreadySent
	}
	return delivery.ErrInProgress
}

func (r *NotificationDeliveriesRepo) MarkSent(ctx context.Context, kind delivery.Kind, subjectID string, providerMessageID *string) error {
	return r.observe("deliveries.mark_sent", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE notification_deliveries
			SET status = 'sent',
			    sent_at = NOW(),
			    provider_message_id = $3,
			    last_error = NULL,
			    updated_at = NOW()
			WHERE kind = $1 AND subject_id = $2`,
			string(kind), subjectID, providerMessageID)
		return err
	})
}

func (r *NotificationDeliveriesRepo) MarkFailed(ctx context.Context, kind delivery.Kind, subjectID, errMsg string) error {
	return r.observe("deliveries.mark_failed", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE notification_deliveries
			SET status = 'failed',
			    last_error = $3,
			    updated_at = NOW()
			WHERE kind = $1 AND subject_id = $2`,
			string(kind), subjectID, errMsg)
		return err
	})
}
