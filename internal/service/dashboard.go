package service

import (
	"context"
	"time"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/order"
	"github.com/naturlife/storefront/internal/domain/product"
)

type StatsStore interface {
	Stats(ctx context.Context, dayStart, activeSince time.Time) (order.Stats, error)
	TopProducts(ctx context.Context, limit int) ([]product.TopSeller, error)
}

type RecentOrderStore interface {
	ListRecent(ctx context.Context, limit int) ([]order.Order, error)
}

const activeCustomerWindow = 30 * 24 * time.Hour

type DashboardView struct {
	Stats        order.Stats         `json:"stats"`
	RecentOrders []order.Order       `json:"recentOrders"`
	TopProducts  []product.TopSeller `json:"topProducts"`
}

type Dashboard struct {
	guard  *Guard
	stats  StatsStore
	orders RecentOrderStore
	now    func() time.Time
}

func NewDashboard(guard *Guard, stats StatsStore, orders RecentOrderStore) *Dashboard {
	return &Dashboard{guard: guard, stats: stats, orders: orders, now: time.Now}
}

func (s *Dashboard) Get(ctx context.Context, raw string) (DashboardView, error) {
	if _, err := s.guard.RequireAdmin(raw); err != nil {
		return DashboardView{}, err
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats, err := s.stats.Stats(ctx, dayStart, now.Add(-activeCustomerWindow))
	if err != nil {
		return DashboardView{}, apperr.Internal(err)
	}

	recent, err := s.orders.ListRecent(ctx, 5)
	if err != nil {
		return DashboardView{}, apperr.Internal(err)
	}

	top, err := s.stats.TopProducts(ctx, 5)
	if err != nil {
		return DashboardView{}, apperr.Internal(err)
	}

	return DashboardView{Stats: stats, RecentOrders: recent, TopProducts: top}, nil
}
