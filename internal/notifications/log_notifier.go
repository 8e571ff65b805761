package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var ErrProviderDown = errors.New("notification provider unavailable")

type LogNotifierOptions struct {
	// Delay simulates a slow provider.
	Delay time.Duration
	// Fail simulates an outage.
	Fail bool
}

// LogNotifier writes messages to the log instead of a mail provider.
type LogNotifier struct {
	log  *slog.Logger
	opts LogNotifierOptions
}

func NewLogNotifier(log *slog.Logger, opts LogNotifierOptions) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log.With("component", "notifier"), opts: opts}
}

func (n *LogNotifier) SendOrderConfirmation(ctx context.Context, in OrderConfirmationInput) (string, error) {
	if err := n.simulate(ctx); err != nil {
		return "", err
	}

	id := uuid.NewString()
	n.log.InfoContext(ctx, "notification.order_confirmation",
		"provider_message_id", id,
		"order_id", in.OrderID,
		"email", in.Email,
		"name", in.Name,
		"total", formatCents(in.TotalCents),
		"items", in.ItemCount,
	)
	return id, nil
}

func (n *LogNotifier) SendWelcome(ctx context.Context, in WelcomeInput) (string, error) {
	if err := n.simulate(ctx); err != nil {
		return "", err
	}

	id := uuid.NewString()
	n.log.InfoContext(ctx, "notification.welcome",
		"provider_message_id", id,
		"user_id", in.UserID,
		"email", in.Email,
		"name", in.Name,
	)
	return id, nil
}

func (n *LogNotifier) simulate(ctx context.Context) error {
	if n.opts.Delay > 0 {
		select {
		case <-time.After(n.opts.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n.opts.Fail {
		return fmt.Errorf("%w (simulated)", ErrProviderDown)
	}
	return nil
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
