// Package actorctx carries the verified caller through context.Context so
// services below the HTTP layer can read it without importing gin.
package actorctx

import (
	"context"

	"github.com/naturlife/storefront/internal/auth"
)

type ctxKey struct{}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	v, ok := ctx.Value(ctxKey{}).(*auth.Claims)
	return v, ok && v != nil
}

func UserIDFrom(ctx context.Context) (string, bool) {
	c, ok := ClaimsFrom(ctx)
	if !ok || c.UserID == "" {
		return "", false
	}
	return c.UserID, true
}
