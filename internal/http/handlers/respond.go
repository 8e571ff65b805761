package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/actorctx"
	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/http/middlewares"
)

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if s := ctx.GetString(middlewares.CtxRequestID); s != "" {
		return s
	}
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

// RespondAppError maps a service error onto the envelope. Internal causes are logged,
// never returned.
func RespondAppError(ctx *gin.Context, err error) {
	ae := apperr.As(err)

	if ae.Kind == apperr.KindInternal {
		rctx := ctx.Request.Context()
		attrs := []any{
			"request_id", requestIDFrom(ctx),
			"route", ctx.FullPath(),
			"err", ae.Err,
		}
		if uid, ok := actorctx.UserIDFrom(rctx); ok {
			attrs = append(attrs, "user_id", uid)
		}
		slog.Default().ErrorContext(rctx, "request failed", attrs...)
	}

	RespondError(ctx, ae.Kind.HTTPStatus(), ae.Code, ae.Message, nil)
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", message, nil)
}

func RespondSuccess(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
