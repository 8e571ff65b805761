package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/observability"
	"github.com/naturlife/storefront/internal/utils"
)

// AfterPlace runs inside the checkout transaction once the order rows exist.
type AfterPlace func(ctx context.Context, tx pgx.Tx, o order.Order) error

type OrdersRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewOrdersRepo(pool *pgxpool.Pool, prom *observability.Prom) *OrdersRepo {
	return &OrdersRepo{observed: observed{prom: prom}, pool: pool}
}

const orderSelect = `
	SELECT o.id, o.user_id, u.name, u.email, o.total_cents, o.status,
	       o.shipping_address, o.payment_method, o.created_at, o.updated_at
	FROM orders o
	JOIN users u ON u.id = o.user_id
`

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	var status, payment string
	err := row.Scan(
		&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.TotalCents, &status,
		&o.ShippingAddress, &payment, &o.CreatedAt, &o.UpdatedAt,
	)
	o.Status = order.Status(status)
	o.PaymentMethod = order.PaymentMethod(payment)
	return o, err
}

// Place validates stock for every line, decrements it, and writes the order and its items
// atomically. Product rows are locked in id order so concurrent checkouts cannot deadlock.
func (r *OrdersRepo) Place(ctx context.Context, p order.Placement, after AfterPlace) (order.Order, error) {
	if len(p.Lines) == 0 {
		return order.Order{}, order.ErrEmptyOrder
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return order.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		ids = append(ids, l.ProductID)
	}

	type locked struct {
		name   string
		price  int64
		stock  int
		status product.Status
	}
	stock := make(map[string]locked, len(ids))

	err = r.observe("orders.place.lock_products", func() error {
		rows, err := tx.Query(ctx, `
			SELECT id, name, price_cents, stock, status
			FROM products
			WHERE id = ANY($1::uuid[])
			ORDER BY id
			FOR UPDATE`, ids)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id, status string
			var l locked
			if err := rows.Scan(&id, &l.name, &l.price, &l.stock, &status); err != nil {
				return err
			}
			l.status = product.Status(status)
			stock[id] = l
		}
		return rows.Err()
	})
	if err != nil {
		return order.Order{}, err
	}

	now := time.Now().UTC()
	o := order.Order{
		ID:              uuid.NewString(),
		UserID:          p.UserID,
		Status:          order.StatusPending,
		ShippingAddress: p.ShippingAddress,
		PaymentMethod:   p.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, l := range p.Lines {
		row, ok := stock[l.ProductID]
		if !ok || row.status != product.StatusActive {
			return order.Order{}, fmt.Errorf("%w: %s", product.ErrNotFound, l.ProductID)
		}
		if row.stock < l.Quantity {
			return order.Order{}, fmt.Errorf("%w: %s", product.ErrInsufficientStock, l.ProductID)
		}

		o.Items = append(o.Items, order.Item{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			ProductID:      l.ProductID,
			ProductName:    row.name,
			Quantity:       l.Quantity,
			UnitPriceCents: row.price,
		})
	}
	o.TotalCents = order.Total(o.Items)

	err = r.observe("orders.place.write", func() error {
		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(`UPDATE products SET stock = stock - $2, updated_at = $3 WHERE id = $1`,
				it.ProductID, it.Quantity, now)
		}
		batch.Queue(`
			INSERT INTO orders (id, user_id, total_cents, status, shipping_address, payment_method, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			o.ID, o.UserID, o.TotalCents, string(o.Status), o.ShippingAddress, string(o.PaymentMethod), o.CreatedAt, o.UpdatedAt)
		for _, it := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price_cents)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.UnitPriceCents)
		}

		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return order.Order{}, err
	}

	if after != nil {
		if err := after(ctx, tx, o); err != nil {
			return order.Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (r *OrdersRepo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	var out []order.Order

	err := r.observe("orders.list_by_user", func() error {
		rows, err := r.pool.Query(ctx, orderSelect+`
			WHERE o.user_id = $1
			ORDER BY o.created_at DESC, o.id DESC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]order.Order, 0)
		for rows.Next() {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecent returns the newest orders without their items.
func (r *OrdersRepo) ListRecent(ctx context.Context, limit int) ([]order.Order, error) {
	if limit <= 0 {
		limit = 5
	}

	out := make([]order.Order, 0, limit)
	err := r.observe("orders.list_recent", func() error {
		rows, err := r.pool.Query(ctx, orderSelect+` ORDER BY o.created_at DESC, o.id DESC LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	return out, err
}

func (r *OrdersRepo) ListCursor(ctx context.Context, f order.ListFilter) (order.Page, error) {
	var (
		conds []string
		args  []any
	)
	pos := 1

	if f.Status != nil {
		conds = append(conds, fmt.Sprintf("o.status = $%d", pos))
		args = append(args, string(*f.Status))
		pos++
	}

	afterAt, afterID := f.AfterCreatedAt, f.AfterID
	if afterAt.IsZero() || afterID == "" {
		afterAt, afterID = utils.MaxCursorTime, utils.MaxCursorID
	}

	// DESC keyset: rows strictly older than the cursor
	conds = append(conds, fmt.Sprintf("(o.created_at, o.id) < ($%d, $%d::uuid)", pos, pos+1))
	args = append(args, afterAt, afterID)
	pos += 2

	q := orderSelect + " WHERE " + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d", pos)
	args = append(args, f.Limit+1)

	items := make([]order.Order, 0, f.Limit)
	err := r.observe("orders.admin.list_cursor", func() error {
		rows, err := r.pool.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			items = append(items, o)
		}
		return rows.Err()
	})
	if err != nil {
		return order.Page{}, err
	}

	page := order.Page{Items: items}
	if len(items) > f.Limit {
		page.HasMore = true
		page.Items = items[:f.Limit]
		last := page.Items[len(page.Items)-1]

		cur, err := utils.EncodeOrderCursor(last.CreatedAt, last.ID)
		if err != nil {
			return order.Page{}, err
		}
		page.NextCursor = &cur
	}

	return page, nil
}

func (r *OrdersRepo) GetByID(ctx context.Context, id string) (order.Order, error) {
	var o order.Order

	err := r.observe("orders.get_by_id", func() error {
		var err error
		o, err = scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}

	list := []order.Order{o}
	if err := r.attachItems(ctx, list); err != nil {
		return order.Order{}, err
	}
	return list[0], nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling returns the stock.
func (r *OrdersRepo) UpdateStatus(ctx context.Context, id string, next order.Status) (order.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return order.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = r.observe("orders.update_status.lock", func() error {
		return tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}

	if !order.Status(current).CanTransitionTo(next) {
		return order.Order{}, fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, current, next)
	}

	err = r.observe("orders.update_status", func() error {
		if _, err := tx.Exec(ctx,
			`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(next),
		); err != nil {
			return err
		}

		if next != order.StatusCancelled {
			return nil
		}
		_, err := tx.Exec(ctx, `
			UPDATE products p
			SET stock = p.stock + oi.quantity, updated_at = NOW()
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id`, id)
		return err
	})
	if err != nil {
		return order.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *OrdersRepo) attachItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	pos := make(map[string]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		pos[o.ID] = i
	}

	return r.observe("orders.items", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT id, order_id, COALESCE(product_id::text, ''), product_name, quantity, unit_price_cents
			FROM order_items
			WHERE order_id = ANY($1::uuid[])
			ORDER BY order_id, id`, ids)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var it order.Item
			if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPriceCents); err != nil {
				return err
			}
			i := pos[it.OrderID]
			orders[i].Items = append(orders[i].Items, it)
		}
		return rows.Err()
	})
}
