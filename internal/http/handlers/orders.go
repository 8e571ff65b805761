package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/http/middlewares"
)

type CheckoutService interface {
	Place(ctx context.Context, userID string, req order.CheckoutRequest) (order.Order, error)
	ListMine(ctx context.Context, userID string) ([]order.Order, error)
}

type OrdersHandler struct {
	checkout CheckoutService
}

func NewOrdersHandler(checkout CheckoutService) *OrdersHandler {
	return &OrdersHandler{checkout: checkout}
}

// POST /api/checkout
func (h *OrdersHandler) Checkout(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	var req order.CheckoutRequest
	if !BindJSON(ctx, &req) {
		return
	}

	// stock locks plus the outbox insert; give it a little more room
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	o, err := h.checkout.Place(cctx, userID, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Set(middlewares.CtxOrderID, o.ID)
	ctx.JSON(http.StatusCreated, o)
}

// GET /api/orders
func (h *OrdersHandler) ListMine(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.checkout.ListMine(cctx, userID)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
