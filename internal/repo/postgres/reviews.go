package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/domain/review"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/observability"
)

type ReviewsRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewReviewsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReviewsRepo {
	return &ReviewsRepo{observed: observed{prom: prom}, pool: pool}
}

func (r *ReviewsRepo) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	var rows pgx.Rows

	err := r.observe("reviews.list_by_product", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `
			SELECT r.id, r.product_id, r.user_id, u.name, r.rating, r.comment, r.created_at
			FROM reviews r
			JOIN users u ON u.id = r.user_id
			WHERE r.product_id = $1
			ORDER BY r.created_at DESC, r.id DESC`, productID)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]review.Review, 0)
	for rows.Next() {
		var rv review.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *ReviewsRepo) Create(ctx context.Context, productID, userID string, req review.CreateRequest) (review.Review, error) {
	rv := review.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}

	err := r.observe("reviews.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt,
		)
		return err
	})
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return review.Review{}, review.ErrAlreadyReviewed
		case IsForeignKeyViolation(err) && constraintName(err) == "reviews_user_id_fkey":
			return review.Review{}, user.ErrNotFound
		case IsForeignKeyViolation(err):
			return review.Review{}, product.ErrNotFound
		}
		return review.Review{}, err
	}
	return rv, nil
}
