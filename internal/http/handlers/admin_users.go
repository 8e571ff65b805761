package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/user"
)

type AdminUserService interface {
	List(ctx context.Context, raw string) ([]user.Public, error)
	UpdateRole(ctx context.Context, raw string, req user.UpdateRoleRequest) error
	Delete(ctx context.Context, raw string, req user.DeleteRequest) error
}

// AdminUsersHandler hands the raw bearer token to the service, which re-verifies it per call.
type AdminUsersHandler struct {
	svc AdminUserService
}

func NewAdminUsersHandler(svc AdminUserService) *AdminUsersHandler {
	return &AdminUsersHandler{svc: svc}
}

// GET /api/admin/users
func (h *AdminUsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	users, err := h.svc.List(cctx, auth.TokenFromHeader(ctx.Request))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": users, "count": len(users)})
}

// PATCH /api/admin/users
func (h *AdminUsersHandler) UpdateRole(ctx *gin.Context) {
	var req user.UpdateRoleRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.svc.UpdateRole(cctx, auth.TokenFromHeader(ctx.Request), req); err != nil {
		RespondAppError(ctx, err)
		return
	}
	RespondSuccess(ctx)
}

// DELETE /api/admin/users
func (h *AdminUsersHandler) Delete(ctx *gin.Context) {
	var req user.DeleteRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.svc.Delete(cctx, auth.TokenFromHeader(ctx.Request), req); err != nil {
		RespondAppError(ctx, err)
		return
	}
	RespondSuccess(ctx)
}
