package jobs

import "time"

// Payloads are ID-based plus the few fields a notifier needs; the worker does not re-read the order.

type OrderConfirmationPayload struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	TotalCents  int64     `json:"totalCents"`
	ItemCount   int       `json:"itemCount"`
	RequestedAt time.Time `json:"requestedAt"`
	RequestID   string    `json:"requestId,omitempty"`
}

type WelcomeEmailPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// IdempotencyKey is the per-order dedupe key for the confirmation job.
func (p OrderConfirmationPayload) IdempotencyKey() string {
	return string(JobOrderConfirmation) + ":" + p.OrderID
}

func (p WelcomeEmailPayload) IdempotencyKey() string {
	return string(JobWelcomeEmail) + ":" + p.UserID
}
