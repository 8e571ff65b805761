package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/product"
	"github.com/naturlife/storefront/internal/domain/review"
	"github.com/naturlife/storefront/internal/http/handlers"
	"github.com/naturlife/storefront/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	products map[string]product.Product
}

func (s stubCatalog) List(context.Context, product.ListFilter) (service.ProductPage, error) {
	items := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		items = append(items, p)
	}
	return service.ProductPage{Items: items, Count: len(items), Total: len(items), Limit: 20}, nil
}

func (s stubCatalog) Get(_ context.Context, id string) (product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return product.Product{}, apperr.NotFound("product_not_found", "Product not found")
	}
	return p, nil
}

type noReviews struct{}

func (noReviews) List(context.Context, string) ([]review.Review, error) { return nil, nil }

func (noReviews) Create(context.Context, string, string, review.CreateRequest) (review.Review, error) {
	return review.Review{}, nil
}

func productsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := handlers.NewProductsHandler(stubCatalog{products: map[string]product.Product{
		"p-1": {ID: "p-1", Name: "Aloe gel", PriceCents: 1299, Status: product.StatusActive},
	}}, noReviews{})

	r := gin.New()
	r.GET("/products", h.List)
	r.GET("/products/:id", h.Get)
	return r
}

func TestProductsGet_ETagRoundTrip(t *testing.T) {
	r := productsRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/p-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	var got product.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1299), got.PriceCents)

	req := httptest.NewRequest(http.MethodGet, "/products/p-1", nil)
	req.Header.Set("If-None-Match", `W/"stale", `+etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestProductsGet_NotFoundEnvelope(t *testing.T) {
	r := productsRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/missing", nil))

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp bindErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "product_not_found", resp.Error.Code)
}

func TestProductsList(t *testing.T) {
	r := productsRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var page service.ProductPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
}

type capturingCatalog struct {
	stubCatalog
	last product.ListFilter
}

func (c *capturingCatalog) List(ctx context.Context, f product.ListFilter) (service.ProductPage, error) {
	c.last = f
	return c.stubCatalog.List(ctx, f)
}

func TestProductsList_PromoQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cat := &capturingCatalog{}
	h := handlers.NewProductsHandler(cat, noReviews{})
	r := gin.New()
	r.GET("/products", h.List)

	cases := map[string]bool{
		"/products":                false,
		"/products?promo=true":     true,
		"/products?promo=1":        true,
		"/products?promo=false":    false,
		"/products?promo=nope":     false,
		"/products?promo=TRUE&q=x": true,
	}
	for target, want := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, want, cat.last.Promo, target)
	}
}
