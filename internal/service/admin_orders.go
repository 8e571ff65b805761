package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/utils"
)

type AdminOrderStore interface {
	ListCursor(ctx context.Context, f order.ListFilter) (order.Page, error)
	GetByID(ctx context.Context, id string) (order.Order, error)
	UpdateStatus(ctx context.Context, id string, next order.Status) (order.Order, error)
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type AdminOrders struct {
	guard   *Guard
	orders  AdminOrderStore
	catalog *Catalog
	log     *slog.Logger
}

func NewAdminOrders(guard *Guard, orders AdminOrderStore, catalog *Catalog, log *slog.Logger) *AdminOrders {
	if log == nil {
		log = slog.Default()
	}
	return &AdminOrders{guard: guard, orders: orders, catalog: catalog, log: log}
}

// List pages newest first. cursor is the opaque NextCursor of the previous page.
func (s *AdminOrders) List(ctx context.Context, raw string, status string, limit int, cursor string) (order.Page, error) {
	if _, err := s.guard.RequireAdmin(raw); err != nil {
		return order.Page{}, err
	}

	f := order.ListFilter{Limit: clampLimit(limit)}
	if status != "" {
		st := order.Status(status)
		if !st.IsValid() {
			return order.Page{}, apperr.Validation("invalid_status", "Unknown order status.")
		}
		f.Status = &st
	}
	if cursor != "" {
		c, err := utils.DecodeOrderCursor(cursor)
		if err != nil {
			return order.Page{}, apperr.Validation("invalid_cursor", "Cursor is invalid.")
		}
		f.AfterCreatedAt, f.AfterID = c.CreatedAt, c.ID
	}

	page, err := s.orders.ListCursor(ctx, f)
	if err != nil {
		return order.Page{}, apperr.Internal(err)
	}
	return page, nil
}

func (s *AdminOrders) Get(ctx context.Context, raw, id string) (order.Order, error) {
	if _, err := s.guard.RequireAdmin(raw); err != nil {
		return order.Order{}, err
	}
	if !utils.IsUUID(id) {
		return order.Order{}, apperr.Validation("invalid_id", "Order id must be a valid UUID.")
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.Order{}, apperr.NotFound("order_not_found", "Order not found.")
		}
		return order.Order{}, apperr.Internal(err)
	}
	return o, nil
}

func (s *AdminOrders) UpdateStatus(ctx context.Context, raw, id string, req order.UpdateStatusRequest) (order.Order, error) {
	actor, err := s.guard.RequireAdmin(raw)
	if err != nil {
		return order.Order{}, err
	}
	if !utils.IsUUID(id) {
		return order.Order{}, apperr.Validation("invalid_id", "Order id must be a valid UUID.")
	}
	if !req.Status.IsValid() {
		return order.Order{}, apperr.Validation("invalid_status", "Unknown order status.")
	}

	o, err := s.orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			return order.Order{}, apperr.NotFound("order_not_found", "Order not found.")
		case errors.Is(err, order.ErrInvalidTransition):
			return order.Order{}, apperr.Wrap(apperr.KindConflict, "invalid_transition", "Order cannot move to that status.", err)
		}
		return order.Order{}, apperr.Internal(err)
	}

	if req.Status == order.StatusCancelled {
		// stock came back
		ids := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
		s.catalog.Invalidate(ids...)
	}

	s.log.InfoContext(ctx, "order status updated", "actor_id", actor.UserID, "order_id", id, "status", req.Status)
	return o, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
