package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/job"
	"github.com/naturlife/storefront/internal/http/middlewares"
	"github.com/naturlife/storefront/internal/service"
	"github.com/naturlife/storefront/internal/utils"
)

type AdminJobService interface {
	List(ctx context.Context, raw, status string, limit int, cursor string) (service.JobPage, error)
	Get(ctx context.Context, raw, id string) (job.Job, error)
	Retry(ctx context.Context, raw, id string) error
	RetryFailed(ctx context.Context, raw string, limit int) (int64, error)
}

type AdminJobsHandler struct {
	svc AdminJobService
}

func NewAdminJobsHandler(svc AdminJobService) *AdminJobsHandler {
	return &AdminJobsHandler{svc: svc}
}

// GET /api/admin/jobs?status=failed&limit=50&cursor=...
func (h *AdminJobsHandler) List(ctx *gin.Context) {
	limit := utils.ParseIntDefault(ctx.Query("limit"), 20)
	if limit < 1 || limit > 100 {
		RespondBadRequest(ctx, "limit must be between 1 and 100", nil)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	page, err := h.svc.List(cctx, auth.TokenFromHeader(ctx.Request), ctx.Query("status"), limit, ctx.Query("cursor"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"limit":      limit,
		"count":      len(page.Items),
		"items":      page.Items,
		"hasMore":    page.HasMore,
		"nextCursor": page.NextCursor,
	})
}

// GET /api/admin/jobs/:id
func (h *AdminJobsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")
	ctx.Set(middlewares.CtxJobID, id)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	j, err := h.svc.Get(cctx, auth.TokenFromHeader(ctx.Request), id)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	RespondJSONWithETag(ctx, http.StatusOK, j)
}

// POST /api/admin/jobs/:id/retry
func (h *AdminJobsHandler) Retry(ctx *gin.Context) {
	id := ctx.Param("id")
	ctx.Set(middlewares.CtxJobID, id)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.svc.Retry(cctx, auth.TokenFromHeader(ctx.Request), id); err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"jobId": id, "status": job.StatusPending})
}

// POST /api/admin/jobs/retry-failed?limit=50
func (h *AdminJobsHandler) RetryFailed(ctx *gin.Context) {
	limit := 50
	if s := ctx.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			RespondBadRequest(ctx, "limit must be a number", nil)
			return
		}
		limit = n
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	n, err := h.svc.RetryFailed(cctx, auth.TokenFromHeader(ctx.Request), limit)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"requeued": n})
}
