package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // hard timeout per send
	FailureThreshold int           // consecutive failures before opening
	Cooldown         time.Duration // time spent open before a trial call
	HalfOpenMaxCalls int           // concurrent trial calls while half-open
}

// ProtectedNotifier wraps a Notifier with a per-call timeout and a circuit breaker so a
// dead provider fails jobs fast instead of tying up workers.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               circuitState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedNotifier{inner: inner, cfg: cfg, now: time.Now}
}

func (n *ProtectedNotifier) SendOrderConfirmation(ctx context.Context, in OrderConfirmationInput) (string, error) {
	return n.call(ctx, func(ctx context.Context) (string, error) {
		return n.inner.SendOrderConfirmation(ctx, in)
	})
}

func (n *ProtectedNotifier) SendWelcome(ctx context.Context, in WelcomeInput) (string, error) {
	return n.call(ctx, func(ctx context.Context) (string, error) {
		return n.inner.SendWelcome(ctx, in)
	})
}

func (n *ProtectedNotifier) call(ctx context.Context, send func(context.Context) (string, error)) (string, error) {
	if !n.allowRequest() {
		return "", ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	id, err := send(sendCtx)
	n.afterRequest(err)
	return id, err
}

func (n *ProtectedNotifier) allowRequest() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case stateOpen:
		if n.now().Sub(n.openedAt) < n.cfg.Cooldown {
			return false
		}
		n.state = stateHalfOpen
		n.halfOpenInFlight = 1
		return true
	case stateHalfOpen:
		if n.halfOpenInFlight >= n.cfg.HalfOpenMaxCalls {
			return false
		}
		n.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (n *ProtectedNotifier) afterRequest(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == stateHalfOpen && n.halfOpenInFlight > 0 {
		n.halfOpenInFlight--
	}

	if err == nil {
		n.consecutiveFailures = 0
		n.state = stateClosed
		return
	}

	n.consecutiveFailures++

	if n.state == stateHalfOpen || n.consecutiveFailures >= n.cfg.FailureThreshold {
		n.state = stateOpen
		n.openedAt = n.now()
	}
}
