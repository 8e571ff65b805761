package service

import (
	"context"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/cart"
	"github.com/naturlife/storefront/internal/utils"
)

type CartStore interface {
	Get(ctx context.Context, userID string) (cart.Cart, error)
	SetQuantity(ctx context.Context, userID, productID string, qty int) error
	Clear(ctx context.Context, userID string) error
}

type CartLineView struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	SubtotalCents  int64  `json:"subtotalCents"`
	Available      bool   `json:"available"`
}

type CartView struct {
	Items      []CartLineView `json:"items"`
	TotalCents int64          `json:"totalCents"`
}

type Carts struct {
	carts   CartStore
	catalog *Catalog
}

func NewCarts(carts CartStore, catalog *Catalog) *Carts {
	return &Carts{carts: carts, catalog: catalog}
}

// Get prices the cart against the current catalog. Lines whose product vanished stay
// visible but unavailable and do not count toward the total.
func (s *Carts) Get(ctx context.Context, userID string) (CartView, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return CartView{}, apperr.Internal(err)
	}

	view := CartView{Items: make([]CartLineView, 0, len(c.Lines))}
	for _, l := range c.Lines {
		line := CartLineView{ProductID: l.ProductID, Quantity: l.Quantity}

		p, err := s.catalog.Get(ctx, l.ProductID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				return CartView{}, err
			}
			view.Items = append(view.Items, line)
			continue
		}

		line.Name = p.Name
		line.UnitPriceCents = p.PriceCents
		line.SubtotalCents = p.PriceCents * int64(l.Quantity)
		line.Available = p.Stock >= l.Quantity
		view.TotalCents += line.SubtotalCents
		view.Items = append(view.Items, line)
	}
	return view, nil
}

func (s *Carts) SetItem(ctx context.Context, userID string, req cart.SetItemRequest) (CartView, error) {
	if req.Quantity < 0 {
		return CartView{}, apperr.Validation("invalid_quantity", "Quantity cannot be negative.")
	}
	productID, ok := utils.CanonicalUUID(req.ProductID)
	if !ok {
		return CartView{}, apperr.Validation("invalid_product_id", "productId must be a valid UUID.")
	}

	if req.Quantity > 0 {
		p, err := s.catalog.Get(ctx, productID)
		if err != nil {
			return CartView{}, err
		}
		if p.Stock < req.Quantity {
			return CartView{}, apperr.Conflict("insufficient_stock", "Not enough stock for this product.")
		}
	}

	if err := s.carts.SetQuantity(ctx, userID, productID, req.Quantity); err != nil {
		return CartView{}, apperr.Internal(err)
	}
	return s.Get(ctx, userID)
}

func (s *Carts) Clear(ctx context.Context, userID string) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *Carts) lines(ctx context.Context, userID string) ([]cart.Line, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return c.Lines, nil
}
