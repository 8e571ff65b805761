package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/cart"
	"github.com/naturlife/storefront/internal/http/middlewares"
	"github.com/naturlife/storefront/internal/service"
)

type CartService interface {
	Get(ctx context.Context, userID string) (service.CartView, error)
	SetItem(ctx context.Context, userID string, req cart.SetItemRequest) (service.CartView, error)
	Clear(ctx context.Context, userID string) error
}

type CartHandler struct {
	carts CartService
}

func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// GET /api/cart
func (h *CartHandler) Get(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	view, err := h.carts.Get(cctx, userID)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// PUT /api/cart/items
func (h *CartHandler) SetItem(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	var req cart.SetItemRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	view, err := h.carts.SetItem(cctx, userID, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// DELETE /api/cart
func (h *CartHandler) Clear(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.carts.Clear(cctx, userID); err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
