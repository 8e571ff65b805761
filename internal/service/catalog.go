package service

import (
	"context"
	"errors"
	"time"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/cache"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/observability"
	"github.com/naturlife/storefront/internal/utils"
)

type ProductStore interface {
	List(ctx context.Context, f product.ListFilter) ([]product.Product, int, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
	Create(ctx context.Context, req product.CreateRequest) (product.Product, error)
	Update(ctx context.Context, id string, req product.UpdateRequest) (product.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductPage struct {
	Items  []product.Product `json:"items"`
	Count  int               `json:"count"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// Catalog is the public, read-only view: active products only, briefly cached.
type Catalog struct {
	products ProductStore
	lists    *cache.Cache[ProductPage]
	items    *cache.Cache[product.Product]
	prom     *observability.Prom
}

func NewCatalog(products ProductStore, ttl time.Duration, prom *observability.Prom) *Catalog {
	return &Catalog{
		products: products,
		lists:    cache.New[ProductPage](ttl),
		items:    cache.New[product.Product](ttl),
		prom:     prom,
	}
}

func (s *Catalog) List(ctx context.Context, f product.ListFilter) (ProductPage, error) {
	f.OnlyActive = true
	f = f.Normalize()

	key := utils.BuildProductsListCacheKey(f.Query, f.Category, f.Promo, f.Limit, f.Offset)
	if page, ok := s.lists.Get(key); ok {
		s.prom.CacheLookup(true)
		return page, nil
	}
	s.prom.CacheLookup(false)

	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return ProductPage{}, apperr.Internal(err)
	}

	page := ProductPage{Items: items, Count: len(items), Total: total, Limit: f.Limit, Offset: f.Offset}
	s.lists.Set(key, page)
	return page, nil
}

// Get hides inactive products from the public.
func (s *Catalog) Get(ctx context.Context, rawID string) (product.Product, error) {
	id, ok := utils.CanonicalUUID(rawID)
	if !ok {
		return product.Product{}, apperr.Validation("invalid_id", "Product id must be a valid UUID.")
	}

	key := utils.BuildProductCacheKey(id)
	if p, ok := s.items.Get(key); ok {
		s.prom.CacheLookup(true)
		return p, nil
	}
	s.prom.CacheLookup(false)

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.Product{}, apperr.NotFound("product_not_found", "Product not found.")
		}
		return product.Product{}, apperr.Internal(err)
	}
	if p.Status != product.StatusActive {
		return product.Product{}, apperr.NotFound("product_not_found", "Product not found.")
	}

	s.items.Set(key, p)
	return p, nil
}

// Invalidate drops cached pages after a catalog write or an order that moved stock.
func (s *Catalog) Invalidate(ids ...string) {
	s.lists.Clear()
	for _, id := range ids {
		s.items.Delete(utils.BuildProductCacheKey(id))
	}
}
