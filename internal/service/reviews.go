package service

import (
	"context"
	"errors"
	"strings"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/domain/review"
	"github.com/naturlife/storefront/internal/domain/user"
)

type ReviewStore interface {
	ListByProduct(ctx context.Context, productID string) ([]review.Review, error)
	Create(ctx context.Context, productID, userID string, req review.CreateRequest) (review.Review, error)
}

type Reviews struct {
	reviews ReviewStore
	catalog *Catalog
}

func NewReviews(reviews ReviewStore, catalog *Catalog) *Reviews {
	return &Reviews{reviews: reviews, catalog: catalog}
}

func (s *Reviews) List(ctx context.Context, productID string) ([]review.Review, error) {
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return nil, err
	}

	out, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *Reviews) Create(ctx context.Context, userID, productID string, req review.CreateRequest) (review.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return review.Review{}, apperr.Validation("invalid_rating", "Rating must be between 1 and 5.")
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return review.Review{}, err
	}

	req.Comment = strings.TrimSpace(req.Comment)

	rv, err := s.reviews.Create(ctx, productID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrAlreadyReviewed):
			return review.Review{}, apperr.Conflict("already_reviewed", "You have already reviewed this product.")
		case errors.Is(err, product.ErrNotFound):
			return review.Review{}, apperr.NotFound("product_not_found", "Product not found.")
		case errors.Is(err, user.ErrNotFound):
			return review.Review{}, apperr.Unauthenticated("unauthorized", "Account no longer exists.")
		}
		return review.Review{}, apperr.Internal(err)
	}

	// rating aggregates changed
	s.catalog.Invalidate(productID)
	return rv, nil
}
