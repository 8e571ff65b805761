package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/http/middlewares"
	"github.com/naturlife/storefront/internal/service"
)

type AccountService interface {
	Register(ctx context.Context, req user.RegisterRequest) (service.AuthResult, error)
	Login(ctx context.Context, req user.LoginRequest) (service.AuthResult, error)
	Me(ctx context.Context, userID string) (user.Public, error)
}

type AuthHandler struct {
	accounts     AccountService
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(accounts AccountService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

// POST /api/auth/register
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.accounts.Register(cctx, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	h.setTokenCookie(ctx, res.Token)
	ctx.JSON(http.StatusCreated, res)
}

// POST /api/auth/login
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.accounts.Login(cctx, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	h.setTokenCookie(ctx, res.Token)
	ctx.JSON(http.StatusOK, res)
}

// POST /api/auth/logout. Tokens are stateless; this only drops the browser copy.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(auth.CookieName, "", -1, "/", "", h.secureCookie, true)
	ctx.Status(http.StatusNoContent)
}

// GET /api/auth/me
func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing token")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.accounts.Me(cctx, userID)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) setTokenCookie(ctx *gin.Context, token string) {
	// Lax so the cookie rides along on top-level navigation to /admin.
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(auth.CookieName, token, int(h.tokenTTL.Seconds()), "/", "", h.secureCookie, true)
}
