package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// allowed status moves; delivered and cancelled are terminal
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	CustomerName    string        `json:"customerName,omitempty"`
	CustomerEmail   string        `json:"customerEmail,omitempty"`
	TotalCents      int64         `json:"totalCents"`
	Status          Status        `json:"status"`
	ShippingAddress string        `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Items           []Item        `json:"items,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Item snapshots the product name and unit price at purchase time.
type Item struct {
	ID             string `json:"id"`
	OrderID        string `json:"orderId"`
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

func (i Item) SubtotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

type LineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=100"`
}

type CheckoutRequest struct {
	Items           []LineRequest `json:"items" binding:"omitempty,max=50,dive"`
	ShippingAddress string        `json:"shippingAddress" binding:"required,min=5,max=500"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=card cash_on_delivery"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// MergeLines folds duplicate product lines into one quantity per product, preserving first-seen order.
// UUID product ids come out in canonical lower-case form.
func MergeLines(lines []LineRequest) []LineRequest {
	idx := make(map[string]int, len(lines))
	out := make([]LineRequest, 0, len(lines))
	for _, l := range lines {
		l.ProductID = canonicalID(l.ProductID)
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

func Total(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.SubtotalCents()
	}
	return sum
}

type ListFilter struct {
	Status         *Status
	Limit          int
	AfterCreatedAt time.Time
	AfterID        string
}

type Page struct {
	Items      []Order `json:"items"`
	NextCursor *string `json:"nextCursor,omitempty"`
	HasMore    bool    `json:"hasMore"`
}

// Stats are the headline dashboard numbers. Sales exclude cancelled orders.
type Stats struct {
	TotalSalesCents int64 `json:"totalSalesCents"`
	TodaySalesCents int64 `json:"todaySalesCents"`
	TotalProducts   int64 `json:"totalProducts"`
	TotalOrders     int64 `json:"totalOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
	ActiveCustomers int64 `json:"activeCustomers"`
}

// Placement is a validated checkout ready to be written in one transaction.
type Placement struct {
	UserID          string
	Lines           []LineRequest
	ShippingAddress string
	PaymentMethod   PaymentMethod
}
