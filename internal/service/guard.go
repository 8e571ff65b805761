// Package service holds the storefront operations behind the HTTP layer. Privileged
// operations take the caller's raw token and re-verify it here, whatever middleware ran before.
package service

import (
	"errors"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/observability"
)

// Guard is the per-operation gate shared by every admin service.
type Guard struct {
	gate *auth.Gate
	prom *observability.Prom
}

func NewGuard(gate *auth.Gate, prom *observability.Prom) *Guard {
	return &Guard{gate: gate, prom: prom}
}

// RequireAdmin verifies raw and demands the admin role before any store access.
func (g *Guard) RequireAdmin(raw string) (*auth.Claims, error) {
	claims, err := g.gate.Authorize(raw, user.RoleAdmin)
	if err == nil {
		return claims, nil
	}

	switch {
	case errors.Is(err, auth.ErrMissingCredential):
		g.prom.AuthDenied("operation", "missing")
		return nil, apperr.Unauthenticated("unauthorized", "Missing token")
	case errors.Is(err, auth.ErrInsufficientRole):
		g.prom.AuthDenied("operation", "role")
		return nil, apperr.Forbidden("forbidden", "Admin role required")
	default:
		g.prom.AuthDenied("operation", "invalid")
		return nil, apperr.Unauthenticated("unauthorized", "Invalid or expired token")
	}
}
