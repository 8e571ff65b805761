package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/actorctx"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/observability"
)

type AuthMiddleware struct {
	verifier auth.Verifier
	prom     *observability.Prom
}

func NewAuthMiddleware(verifier auth.Verifier, prom *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, prom: prom}
}

// RequireAuth accepts the bearer header or the auth cookie and stashes the verified
// claims on both the gin context and the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.TokenFromRequest(c.Request)
		if raw == "" {
			m.prom.AuthDenied("middleware", "missing")
			abortError(c, http.StatusUnauthorized, "unauthorized", "Missing token")
			return
		}

		claims, err := m.verifier.Verify(raw)
		if err != nil {
			m.prom.AuthDenied("middleware", "invalid")
			abortError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, string(claims.Role))
		c.Request = c.Request.WithContext(actorctx.WithClaims(c.Request.Context(), claims))

		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(CtxUserID)
	return id, id != ""
}

func RoleFromContext(c *gin.Context) (user.Role, bool) {
	role := user.Role(c.GetString(CtxRole))
	return role, role.IsValid()
}
