package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/domain/user"
)

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		if role != required {
			m.prom.AuthDenied("middleware", "role")
			abortError(c, http.StatusForbidden, "forbidden", "Admin role required")
			return
		}

		c.Next()
	}
}
