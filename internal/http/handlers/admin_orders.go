package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/http/middlewares"
	"github.com/naturlife/storefront/internal/service"
	"github.com/naturlife/storefront/internal/utils"
)

type AdminOrderService interface {
	List(ctx context.Context, raw, status string, limit int, cursor string) (order.Page, error)
	Get(ctx context.Context, raw, id string) (order.Order, error)
	UpdateStatus(ctx context.Context, raw, id string, req order.UpdateStatusRequest) (order.Order, error)
}

type DashboardService interface {
	Get(ctx context.Context, raw string) (service.DashboardView, error)
}

type AdminOrdersHandler struct {
	orders    AdminOrderService
	dashboard DashboardService
}

func NewAdminOrdersHandler(orders AdminOrderService, dashboard DashboardService) *AdminOrdersHandler {
	return &AdminOrdersHandler{orders: orders, dashboard: dashboard}
}

// GET /api/admin/orders?status=pending&limit=20&cursor=...
func (h *AdminOrdersHandler) List(ctx *gin.Context) {
	limit := utils.ParseIntDefault(ctx.Query("limit"), 20)
	if limit < 1 || limit > 100 {
		RespondBadRequest(ctx, "limit must be between 1 and 100", nil)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	page, err := h.orders.List(cctx, auth.TokenFromHeader(ctx.Request), ctx.Query("status"), limit, ctx.Query("cursor"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"limit":      limit,
		"count":      len(page.Items),
		"items":      page.Items,
		"hasMore":    page.HasMore,
		"nextCursor": page.NextCursor,
	})
}

// GET /api/admin/orders/:id
func (h *AdminOrdersHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	ctx.Set(middlewares.CtxOrderID, id)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	o, err := h.orders.Get(cctx, auth.TokenFromHeader(ctx.Request), id)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	RespondJSONWithETag(ctx, http.StatusOK, o)
}

// PATCH /api/admin/orders/:id/status
func (h *AdminOrdersHandler) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")
	ctx.Set(middlewares.CtxOrderID, id)

	var req order.UpdateStatusRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	o, err := h.orders.UpdateStatus(cctx, auth.TokenFromHeader(ctx.Request), id, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, o)
}

// GET /api/admin/dashboard
func (h *AdminOrdersHandler) Dashboard(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	view, err := h.dashboard.Get(cctx, auth.TokenFromHeader(ctx.Request))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}
