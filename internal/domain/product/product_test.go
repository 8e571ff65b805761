package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		orig  *int64
		want  int
	}{
		{"no original", 1000, nil, 0},
		{"equal", 1000, ptr(int64(1000)), 0},
		{"original below price", 1000, ptr(int64(900)), 0},
		{"quarter off", 750, ptr(int64(1000)), 25},
		{"rounds half up", 1995, ptr(int64(2990)), 33},
		{"rounds to nearest", 2490, ptr(int64(2990)), 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountPercent(tt.price, tt.orig))
		})
	}
}

func TestNew_DefaultsActive(t *testing.T) {
	now := time.Now()
	p := New(CreateRequest{Name: " Shea butter ", PriceCents: 1200, OriginalPriceCents: ptr(int64(1500)), Category: "care"}, "p-1", now)

	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, "Shea butter", p.Name)
	assert.Equal(t, 20, p.Discount)
}

func TestApply_RecomputesDiscount(t *testing.T) {
	now := time.Now()
	p := New(CreateRequest{Name: "Soap", PriceCents: 800, OriginalPriceCents: ptr(int64(1000)), Category: "care"}, "p-1", now)
	assert.Equal(t, 20, p.Discount)

	p = p.Apply(UpdateRequest{PriceCents: ptr(int64(500))}, now.Add(time.Minute))
	assert.Equal(t, 50, p.Discount)

	p = p.Apply(UpdateRequest{OriginalPriceCents: ptr(int64(0))}, now.Add(2*time.Minute))
	assert.Nil(t, p.OriginalPriceCents)
	assert.Equal(t, 0, p.Discount)
}

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Limit: 1000, Offset: -3, Query: "  tea "}.Normalize()
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, "tea", f.Query)
}
