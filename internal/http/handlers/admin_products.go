package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/service"
)

type AdminProductService interface {
	List(ctx context.Context, raw string, f product.ListFilter) (service.ProductPage, error)
	Create(ctx context.Context, raw string, req product.CreateRequest) (product.Product, error)
	Update(ctx context.Context, raw, id string, req product.UpdateRequest) (product.Product, error)
	Delete(ctx context.Context, raw, id string) error
}

type AdminProductsHandler struct {
	svc AdminProductService
}

func NewAdminProductsHandler(svc AdminProductService) *AdminProductsHandler {
	return &AdminProductsHandler{svc: svc}
}

// GET /api/admin/products
func (h *AdminProductsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	page, err := h.svc.List(cctx, auth.TokenFromHeader(ctx.Request), listFilterFromQuery(ctx))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// POST /api/admin/products
func (h *AdminProductsHandler) Create(ctx *gin.Context) {
	var req product.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.svc.Create(cctx, auth.TokenFromHeader(ctx.Request), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, p)
}

// PUT /api/admin/products/:id
func (h *AdminProductsHandler) Update(ctx *gin.Context) {
	var req product.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.svc.Update(cctx, auth.TokenFromHeader(ctx.Request), ctx.Param("id"), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// DELETE /api/admin/products/:id
func (h *AdminProductsHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.Delete(cctx, auth.TokenFromHeader(ctx.Request), ctx.Param("id")); err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
