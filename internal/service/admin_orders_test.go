package service

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/repo/memory"
	"github.com/naturlife/storefront/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagingOrders records the filters the admin listing passes down.
type pagingOrders struct {
	filters []order.ListFilter
}

func (p *pagingOrders) ListCursor(_ context.Context, f order.ListFilter) (order.Page, error) {
	p.filters = append(p.filters, f)
	return order.Page{Items: []order.Order{}}, nil
}

func (p *pagingOrders) GetByID(context.Context, string) (order.Order, error) {
	return order.Order{}, order.ErrNotFound
}

func (p *pagingOrders) UpdateStatus(context.Context, string, order.Status) (order.Order, error) {
	return order.Order{}, order.ErrNotFound
}

func TestAdminOrders_ListCursor(t *testing.T) {
	users := memory.NewUsersRepo()
	tokens := newTokens()
	store := &pagingOrders{}
	svc := NewAdminOrders(newGuard(tokens), store, nil, nil)
	ctx := context.Background()

	_, adminTok := seedUser(t, users, tokens, "admin@x.com", user.RoleAdmin)

	crafted := base64.RawURLEncoding.EncodeToString([]byte(`{"at":"2026-01-02T03:04:05Z","id":"' OR 1=1 --"}`))
	_, err := svc.List(ctx, adminTok, "", 10, crafted)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "invalid_cursor", apperr.As(err).Code)
	assert.Empty(t, store.filters)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cur, err := utils.EncodeOrderCursor(at, "0B8F5C3E-8D4E-4A43-9A59-6F7E1C2D3B4A")
	require.NoError(t, err)

	_, err = svc.List(ctx, adminTok, "", 10, cur)
	require.NoError(t, err)
	require.Len(t, store.filters, 1)
	assert.Equal(t, "0b8f5c3e-8d4e-4a43-9a59-6f7e1c2d3b4a", store.filters[0].AfterID)
	assert.True(t, at.Equal(store.filters[0].AfterCreatedAt))
}
