package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/domain/review"
	"github.com/naturlife/storefront/internal/http/middlewares"
	"github.com/naturlife/storefront/internal/service"
	"github.com/naturlife/storefront/internal/utils"
)

type CatalogService interface {
	List(ctx context.Context, f product.ListFilter) (service.ProductPage, error)
	Get(ctx context.Context, id string) (product.Product, error)
}

type ReviewService interface {
	List(ctx context.Context, productID string) ([]review.Review, error)
	Create(ctx context.Context, userID, productID string, req review.CreateRequest) (review.Review, error)
}

type ProductsHandler struct {
	catalog CatalogService
	reviews ReviewService
}

func NewProductsHandler(catalog CatalogService, reviews ReviewService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog, reviews: reviews}
}

func listFilterFromQuery(ctx *gin.Context) product.ListFilter {
	return product.ListFilter{
		Query:    ctx.Query("q"),
		Category: ctx.Query("category"),
		Promo:    isTruthy(ctx.Query("promo")),
		Limit:    utils.ParseIntDefault(ctx.Query("limit"), 20),
		Offset:   utils.ParseIntDefault(ctx.Query("offset"), 0),
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// GET /api/products?q=&category=&promo=&limit=&offset=
func (h *ProductsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	page, err := h.catalog.List(cctx, listFilterFromQuery(ctx))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, page)
}

// GET /api/products/:id
func (h *ProductsHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	p, err := h.catalog.Get(cctx, ctx.Param("id"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

// GET /api/products/:id/reviews
func (h *ProductsHandler) ListReviews(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.reviews.List(cctx, ctx.Param("id"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// POST /api/products/:id/reviews
func (h *ProductsHandler) CreateReview(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing token")
		return
	}

	var req review.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	rv, err := h.reviews.Create(cctx, userID, ctx.Param("id"), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, rv)
}
