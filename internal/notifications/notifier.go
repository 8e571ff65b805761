// Package notifications delivers customer messages on behalf of the job worker.
package notifications

import "context"

type OrderConfirmationInput struct {
	OrderID    string
	Email      string
	Name       string
	TotalCents int64
	ItemCount  int
}

type WelcomeInput struct {
	UserID string
	Email  string
	Name   string
}

// Notifier sends one message per call. Implementations return a provider message id when
// the provider hands one back.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, in OrderConfirmationInput) (string, error)
	SendWelcome(ctx context.Context, in WelcomeInput) (string, error)
}
