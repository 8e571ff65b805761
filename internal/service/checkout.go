package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/job"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/jobs"
	"github.com/naturlife/storefront/internal/observability"
	"github.com/naturlife/storefront/internal/repo/postgres"
	"github.com/naturlife/storefront/internal/utils"
)

type OrderStore interface {
	Place(ctx context.Context, p order.Placement, after postgres.AfterPlace) (order.Order, error)
	ListByUser(ctx context.Context, userID string) ([]order.Order, error)
}

type TxJobEnqueuer interface {
	CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error)
}

type Checkout struct {
	orders  OrderStore
	users   UserStore
	carts   *Carts
	catalog *Catalog
	jobs    TxJobEnqueuer
	log     *slog.Logger
	prom    *observability.Prom
}

func NewCheckout(orders OrderStore, users UserStore, carts *Carts, catalog *Catalog, jobs TxJobEnqueuer, log *slog.Logger, prom *observability.Prom) *Checkout {
	if log == nil {
		log = slog.Default()
	}
	return &Checkout{orders: orders, users: users, carts: carts, catalog: catalog, jobs: jobs, log: log, prom: prom}
}

// Place turns the request (or the caller's cart when no items are given) into an order.
// Stock checks, the order rows, and the confirmation job commit together or not at all.
func (s *Checkout) Place(ctx context.Context, userID string, req order.CheckoutRequest) (order.Order, error) {
	o, err := s.place(ctx, userID, req)
	if err != nil {
		s.prom.Checkout(apperr.As(err).Code)
		return order.Order{}, err
	}
	s.prom.Checkout("ok")
	return o, nil
}

func (s *Checkout) place(ctx context.Context, userID string, req order.CheckoutRequest) (order.Order, error) {
	buyer, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return order.Order{}, apperr.Unauthenticated("unauthorized", "Account no longer exists.")
		}
		return order.Order{}, apperr.Internal(err)
	}

	lines := req.Items
	fromCart := len(lines) == 0
	if fromCart {
		cartLines, err := s.carts.lines(ctx, userID)
		if err != nil {
			return order.Order{}, err
		}
		for _, l := range cartLines {
			lines = append(lines, order.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
		}
	}
	if len(lines) == 0 {
		return order.Order{}, apperr.Validation("empty_order", "Your cart is empty.")
	}

	for _, l := range lines {
		if !utils.IsUUID(l.ProductID) {
			return order.Order{}, apperr.Validation("invalid_product_id", "productId must be a valid UUID.")
		}
		if l.Quantity < 1 {
			return order.Order{}, apperr.Validation("invalid_quantity", "Quantity must be at least 1.")
		}
	}

	payment := req.PaymentMethod
	if payment == "" {
		payment = order.PaymentCard
	}

	placement := order.Placement{
		UserID:          userID,
		Lines:           order.MergeLines(lines),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		PaymentMethod:   payment,
	}

	placed, err := s.orders.Place(ctx, placement, s.enqueueConfirmation(buyer))
	if err != nil {
		switch {
		case errors.Is(err, product.ErrInsufficientStock):
			return order.Order{}, apperr.Wrap(apperr.KindConflict, "insufficient_stock", "Not enough stock for one of the products.", err)
		case errors.Is(err, product.ErrNotFound):
			return order.Order{}, apperr.Wrap(apperr.KindNotFound, "product_not_found", "One of the products is no longer available.", err)
		case errors.Is(err, order.ErrEmptyOrder):
			return order.Order{}, apperr.Validation("empty_order", "Your cart is empty.")
		}
		return order.Order{}, apperr.Internal(err)
	}

	placed.CustomerName = buyer.Name
	placed.CustomerEmail = buyer.Email

	productIDs := make([]string, 0, len(placed.Items))
	for _, it := range placed.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	s.catalog.Invalidate(productIDs...)

	if fromCart {
		if err := s.carts.Clear(ctx, userID); err != nil {
			s.log.WarnContext(ctx, "cart not cleared after checkout", "user_id", userID, "order_id", placed.ID, "err", err)
		}
	}

	s.log.InfoContext(ctx, "order placed", "user_id", userID, "order_id", placed.ID, "total_cents", placed.TotalCents)
	return placed, nil
}

func (s *Checkout) enqueueConfirmation(buyer user.User) postgres.AfterPlace {
	return func(ctx context.Context, tx pgx.Tx, o order.Order) error {
		payload := jobs.OrderConfirmationPayload{
			OrderID:     o.ID,
			UserID:      buyer.ID,
			Email:       buyer.Email,
			Name:        buyer.Name,
			TotalCents:  o.TotalCents,
			ItemCount:   len(o.Items),
			RequestedAt: time.Now().UTC(),
		}

		req, err := jobs.NewCreateRequest(jobs.JobOrderConfirmation, payload, payload.IdempotencyKey())
		if err != nil {
			return err
		}
		uid := buyer.ID
		req.UserID = &uid

		// Any insert error has already aborted tx, so the order must roll back with it.
		_, err = s.jobs.CreateTx(ctx, tx, req)
		return err
	}
}

func (s *Checkout) ListMine(ctx context.Context, userID string) ([]order.Order, error) {
	out, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}
