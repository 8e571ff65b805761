package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/utils"
)

type AdminProducts struct {
	guard    *Guard
	products ProductStore
	catalog  *Catalog
	log      *slog.Logger
}

func NewAdminProducts(guard *Guard, products ProductStore, catalog *Catalog, log *slog.Logger) *AdminProducts {
	if log == nil {
		log = slog.Default()
	}
	return &AdminProducts{guard: guard, products: products, catalog: catalog, log: log}
}

// List includes inactive products, unlike the public catalog.
func (s *AdminProducts) List(ctx context.Context, raw string, f product.ListFilter) (ProductPage, error) {
	if _, err := s.guard.RequireAdmin(raw); err != nil {
		return ProductPage{}, err
	}

	f.OnlyActive = false
	f = f.Normalize()

	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return ProductPage{}, apperr.Internal(err)
	}
	return ProductPage{Items: items, Count: len(items), Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *AdminProducts) Create(ctx context.Context, raw string, req product.CreateRequest) (product.Product, error) {
	actor, err := s.guard.RequireAdmin(raw)
	if err != nil {
		return product.Product{}, err
	}

	if req.PriceCents <= 0 {
		return product.Product{}, apperr.Validation("invalid_price", "Price must be greater than zero.")
	}
	if req.Stock < 0 {
		return product.Product{}, apperr.Validation("invalid_stock", "Stock cannot be negative.")
	}
	if req.Status != "" && !req.Status.IsValid() {
		return product.Product{}, apperr.Validation("invalid_status", "Status must be active or inactive.")
	}

	p, err := s.products.Create(ctx, req)
	if err != nil {
		return product.Product{}, apperr.Internal(err)
	}

	s.catalog.Invalidate()
	s.log.InfoContext(ctx, "product created", "actor_id", actor.UserID, "product_id", p.ID)
	return p, nil
}

func (s *AdminProducts) Update(ctx context.Context, raw, id string, req product.UpdateRequest) (product.Product, error) {
	actor, err := s.guard.RequireAdmin(raw)
	if err != nil {
		return product.Product{}, err
	}

	if !utils.IsUUID(id) {
		return product.Product{}, apperr.Validation("invalid_id", "Product id must be a valid UUID.")
	}
	if req.Status != nil && !req.Status.IsValid() {
		return product.Product{}, apperr.Validation("invalid_status", "Status must be active or inactive.")
	}

	p, err := s.products.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.Product{}, apperr.NotFound("product_not_found", "Product not found.")
		}
		return product.Product{}, apperr.Internal(err)
	}

	s.catalog.Invalidate(id)
	s.log.InfoContext(ctx, "product updated", "actor_id", actor.UserID, "product_id", id)
	return p, nil
}

func (s *AdminProducts) Delete(ctx context.Context, raw, id string) error {
	actor, err := s.guard.RequireAdmin(raw)
	if err != nil {
		return err
	}

	if !utils.IsUUID(id) {
		return apperr.Validation("invalid_id", "Product id must be a valid UUID.")
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return apperr.NotFound("product_not_found", "Product not found.")
		}
		return apperr.Internal(err)
	}

	s.catalog.Invalidate(id)
	s.log.InfoContext(ctx, "product deleted", "actor_id", actor.UserID, "product_id", id)
	return nil
}
