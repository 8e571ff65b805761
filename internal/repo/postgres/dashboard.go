package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/observability"
)

type DashboardRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewDashboardRepo(pool *pgxpool.Pool, prom *observability.Prom) *DashboardRepo {
	return &DashboardRepo{observed: observed{prom: prom}, pool: pool}
}

// Stats aggregates the dashboard headline numbers. dayStart is the start of "today"
// in the caller's timezone; activeSince bounds the active-customer window.
func (r *DashboardRepo) Stats(ctx context.Context, dayStart, activeSince time.Time) (order.Stats, error) {
	var s order.Stats

	err := r.observe("dashboard.stats", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT
				COALESCE(SUM(total_cents) FILTER (WHERE status <> 'cancelled'), 0),
				COALESCE(SUM(total_cents) FILTER (WHERE status <> 'cancelled' AND created_at >= $1), 0),
				(SELECT COUNT(*) FROM products),
				COUNT(*),
				COUNT(*) FILTER (WHERE status = 'pending'),
				COUNT(DISTINCT user_id) FILTER (WHERE created_at >= $2)
			FROM orders`, dayStart, activeSince,
		).Scan(
			&s.TotalSalesCents,
			&s.TodaySalesCents,
			&s.TotalProducts,
			&s.TotalOrders,
			&s.PendingOrders,
			&s.ActiveCustomers,
		)
	})
	return s, err
}

// TopProducts ranks products by units sold in non-cancelled orders.
func (r *DashboardRepo) TopProducts(ctx context.Context, limit int) ([]product.TopSeller, error) {
	if limit <= 0 {
		limit = 5
	}

	out := make([]product.TopSeller, 0, limit)
	err := r.observe("dashboard.top_products", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT oi.product_id::text, MAX(oi.product_name),
			       SUM(oi.quantity)::bigint,
			       SUM(oi.quantity * oi.unit_price_cents)::bigint
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.status <> 'cancelled' AND oi.product_id IS NOT NULL
			GROUP BY oi.product_id
			ORDER BY 3 DESC, 4 DESC
			LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t product.TopSeller
			if err := rows.Scan(&t.ProductID, &t.Name, &t.UnitsSold, &t.RevenueCents); err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	return out, err
}
