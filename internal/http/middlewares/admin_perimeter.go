package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/observability"
)

// AdminPerimeter is the coarse gate in front of the /admin pages. Any failure sends the
// browser home; nothing behind it runs.
func AdminPerimeter(gate *auth.Gate, prom *observability.Prom) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := gate.Authorize(auth.TokenFromRequest(c.Request), user.RoleAdmin)
		if err != nil {
			prom.AuthDenied("perimeter", perimeterReason(err))
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, string(claims.Role))
		c.Next()
	}
}

func perimeterReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCredential):
		return "missing"
	case errors.Is(err, auth.ErrInsufficientRole):
		return "role"
	default:
		return "invalid"
	}
}
