package product

import (
	"errors"
	"math"
	"strings"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInactive          = errors.New("product is not available")
)

// Money is stored in integer cents.
type Product struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	PriceCents         int64     `json:"priceCents"`
	OriginalPriceCents *int64    `json:"originalPriceCents,omitempty"`
	Discount           int       `json:"discount"`
	Stock              int       `json:"stock"`
	Category           string    `json:"category"`
	ImageURL           *string   `json:"imageUrl,omitempty"`
	Status             Status    `json:"status"`
	Rating             float64   `json:"rating"`
	ReviewCount        int       `json:"reviewCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Name               string  `json:"name" binding:"required,min=1,max=200"`
	Description        string  `json:"description" binding:"max=5000"`
	PriceCents         int64   `json:"priceCents" binding:"required,gt=0"`
	OriginalPriceCents *int64  `json:"originalPriceCents" binding:"omitempty,gt=0"`
	Stock              int     `json:"stock" binding:"gte=0"`
	Category           string  `json:"category" binding:"required,min=1,max=100"`
	ImageURL           *string `json:"imageUrl" binding:"omitempty,url,max=2048"`
	Status             Status  `json:"status" binding:"omitempty,oneof=active inactive"`
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name               *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description        *string `json:"description" binding:"omitempty,max=5000"`
	PriceCents         *int64  `json:"priceCents" binding:"omitempty,gt=0"`
	OriginalPriceCents *int64  `json:"originalPriceCents" binding:"omitempty,gte=0"`
	Stock              *int    `json:"stock" binding:"omitempty,gte=0"`
	Category           *string `json:"category" binding:"omitempty,min=1,max=100"`
	ImageURL           *string `json:"imageUrl" binding:"omitempty,max=2048"`
	Status             *Status `json:"status" binding:"omitempty,oneof=active inactive"`
}

type ListFilter struct {
	Query      string
	Category   string
	OnlyActive bool
	// Promo keeps only discounted products.
	Promo      bool
	Limit      int
	Offset     int
}

func (f ListFilter) Normalize() ListFilter {
	f.Query = strings.TrimSpace(f.Query)
	f.Category = strings.TrimSpace(f.Category)
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// DiscountPercent derives the discount from the price pair, rounded to the nearest percent.
// No original price, or one not above the current price, means no discount.
func DiscountPercent(priceCents int64, originalPriceCents *int64) int {
	if originalPriceCents == nil || *originalPriceCents <= 0 || *originalPriceCents <= priceCents {
		return 0
	}
	orig := float64(*originalPriceCents)
	return int(math.Round((orig - float64(priceCents)) / orig * 100))
}

func New(req CreateRequest, id string, now time.Time) Product {
	status := req.Status
	if status == "" {
		status = StatusActive
	}

	orig := req.OriginalPriceCents
	if orig != nil && *orig == 0 {
		orig = nil
	}

	return Product{
		ID:                 id,
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		PriceCents:         req.PriceCents,
		OriginalPriceCents: orig,
		Discount:           DiscountPercent(req.PriceCents, orig),
		Stock:              req.Stock,
		Category:           strings.TrimSpace(req.Category),
		ImageURL:           req.ImageURL,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Apply merges a partial update and recomputes the derived discount.
func (p Product) Apply(req UpdateRequest, now time.Time) Product {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.OriginalPriceCents != nil {
		if *req.OriginalPriceCents == 0 {
			p.OriginalPriceCents = nil
		} else {
			v := *req.OriginalPriceCents
			p.OriginalPriceCents = &v
		}
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.ImageURL != nil {
		if strings.TrimSpace(*req.ImageURL) == "" {
			p.ImageURL = nil
		} else {
			v := *req.ImageURL
			p.ImageURL = &v
		}
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	p.Discount = DiscountPercent(p.PriceCents, p.OriginalPriceCents)
	p.UpdatedAt = now
	return p
}

// TopSeller is a dashboard row: units sold and revenue per product.
type TopSeller struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	UnitsSold    int64  `json:"unitsSold"`
	RevenueCents int64  `json:"revenueCents"`
}
