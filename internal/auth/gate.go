package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/naturlife/storefront/internal/domain/user"
)

const (
	// CookieName carries the raw token for browser page requests.
	CookieName = "auth_token"

	bearerPrefix = "Bearer "
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid or expired credential")
	ErrInsufficientRole  = errors.New("insufficient role")
	// ErrSelfDeletion guards the admin surface against an admin removing their own account.
	ErrSelfDeletion = errors.New("cannot delete own account")
)

// Verifier keeps the gate decoupled from the signing implementation so tests can fake it.
type Verifier interface {
	Verify(raw string) (*Claims, error)
}

// Gate is the per-operation check: it re-verifies the presented token and role on every call.
type Gate struct {
	verifier Verifier
}

func NewGate(v Verifier) *Gate {
	return &Gate{verifier: v}
}

// Authorize returns the verified claims, or one of ErrMissingCredential,
// ErrInvalidCredential, ErrInsufficientRole.
func (g *Gate) Authorize(raw string, required user.Role) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingCredential
	}

	claims, err := g.verifier.Verify(raw)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	if required != "" && claims.Role != required {
		return claims, ErrInsufficientRole
	}

	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// TokenFromHeader reads only the Authorization header. Data endpoints use it.
func TokenFromHeader(r *http.Request) string {
	return BearerToken(r.Header.Get("Authorization"))
}

// TokenFromRequest accepts the Authorization header or the auth cookie interchangeably.
// Page requests use it.
func TokenFromRequest(r *http.Request) string {
	if tok := TokenFromHeader(r); tok != "" {
		return tok
	}

	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

// EnsureNotSelf enforces the self-deletion invariant against the verified caller.
// UUIDs are compared by value so case and formatting variants of the caller's
// own id are still refused.
func EnsureNotSelf(actor *Claims, targetID string) error {
	if actor == nil {
		return nil
	}
	if sameID(actor.UserID, targetID) {
		return ErrSelfDeletion
	}
	return nil
}

func sameID(a, b string) bool {
	ua, errA := uuid.Parse(strings.TrimSpace(a))
	ub, errB := uuid.Parse(strings.TrimSpace(b))
	if errA == nil && errB == nil {
		return ua == ub
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
