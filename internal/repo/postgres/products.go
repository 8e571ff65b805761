package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/observability"
)

type ProductsRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{observed: observed{prom: prom}, pool: pool}
}

// rating and review count are aggregated from reviews on read
const productSelect = `
	SELECT p.id, p.name, p.description, p.price_cents, p.original_price_cents, p.discount,
	       p.stock, p.category, p.image_url, p.status,
	       COALESCE(AVG(r.rating), 0)::float8 AS rating,
	       COUNT(r.id)::int AS review_count,
	       p.created_at, p.updated_at
	FROM products p
	LEFT JOIN reviews r ON r.product_id = p.id
`

const productGroupBy = ` GROUP BY p.id `

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product
	var status string
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.OriginalPriceCents, &p.Discount,
		&p.Stock, &p.Category, &p.ImageURL, &status,
		&p.Rating, &p.ReviewCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	p.Status = product.Status(status)
	return p, err
}

// List returns one page of products and the total matching count.
func (r *ProductsRepo) List(ctx context.Context, f product.ListFilter) ([]product.Product, int, error) {
	f = f.Normalize()

	var (
		conds []string
		args  []any
	)
	pos := 1

	if f.OnlyActive {
		conds = append(conds, fmt.Sprintf("p.status = $%d", pos))
		args = append(args, string(product.StatusActive))
		pos++
	}
	if f.Query != "" {
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", pos, pos))
		args = append(args, "%"+f.Query+"%")
		pos++
	}
	if f.Category != "" {
		conds = append(conds, fmt.Sprintf("LOWER(p.category) = LOWER($%d)", pos))
		args = append(args, f.Category)
		pos++
	}
	if f.Promo {
		conds = append(conds, "p.discount > 0")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := r.observe("products.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}

	q := productSelect + where + productGroupBy +
		fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	var rows pgx.Rows
	err = r.observe("products.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, q, args...)
		return qerr
	})
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]product.Product, 0, f.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	var p product.Product

	err := r.observe("products.get_by_id", func() error {
		var err error
		p, err = scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`+productGroupBy, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) Create(ctx context.Context, req product.CreateRequest) (product.Product, error) {
	p := product.New(req, uuid.NewString(), time.Now().UTC())

	err := r.observe("products.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO products (id, name, description, price_cents, original_price_cents, discount,
			                      stock, category, image_url, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			p.ID, p.Name, p.Description, p.PriceCents, p.OriginalPriceCents, p.Discount,
			p.Stock, p.Category, p.ImageURL, string(p.Status), p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

// Update applies a partial update under a row lock so concurrent edits do not interleave.
func (r *ProductsRepo) Update(ctx context.Context, id string, req product.UpdateRequest) (product.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return product.Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current product.Product
	err = r.observe("products.update.lock", func() error {
		var status string
		err := tx.QueryRow(ctx, `
			SELECT id, name, description, price_cents, original_price_cents, discount,
			       stock, category, image_url, status, created_at, updated_at
			FROM products WHERE id = $1 FOR UPDATE`, id,
		).Scan(
			&current.ID, &current.Name, &current.Description, &current.PriceCents, &current.OriginalPriceCents, &current.Discount,
			&current.Stock, &current.Category, &current.ImageURL, &status, &current.CreatedAt, &current.UpdatedAt,
		)
		current.Status = product.Status(status)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}

	next := current.Apply(req, time.Now().UTC())

	err = r.observe("products.update", func() error {
		_, err := tx.Exec(ctx, `
			UPDATE products
			SET name = $2, description = $3, price_cents = $4, original_price_cents = $5, discount = $6,
			    stock = $7, category = $8, image_url = $9, status = $10, updated_at = $11
			WHERE id = $1`,
			next.ID, next.Name, next.Description, next.PriceCents, next.OriginalPriceCents, next.Discount,
			next.Stock, next.Category, next.ImageURL, string(next.Status), next.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return product.Product{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return product.Product{}, err
	}
	return next, nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("products.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}
