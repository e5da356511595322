// Account HTTP handlers.
//
// Endpoints:
//   - GET /account/quota      (current allowance)
//   - GET /account/usage      (provider call history, paginated)
//   - GET /account/usage/{id} (one call with its message turns)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/repo"
)

// ListUsageResponse wraps a page of provider calls.
type ListUsageResponse struct {
	Calls      []domain.ProviderCall `json:"calls"`
	Pagination Pagination            `json:"pagination"`
}

// UsageCallResponse is one provider call with its per-turn prompt and
// response rows.
type UsageCallResponse struct {
	Call     domain.ProviderCall          `json:"call"`
	Messages []domain.ProviderCallMessage `json:"messages"`
}

// GetQuota godoc
// @ID          getQuota
// @Summary     Current quota status
// @Description Returns the caller's tier, monthly usage, remaining allowance, and bonus credits. Creates the free-tier account on first sight.
// @Tags        Account
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
//
// @Success     200  {object}  services.QuotaStatus
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /account/quota [get]
func (h *Handlers) GetQuota(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "a registered account is required")
		return
	}
	st, err := h.quotaSvc.CheckQuota(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, st)
}

// ListUsage godoc
// @ID          listUsage
// @Summary     Provider call history (paginated)
// @Description Returns the caller's provider call records, newest first. Prompt and response bodies are served per call by GET /account/usage/{id}.
// @Tags        Account
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"       example(user123)
// @Param       page       query   int     false "Page number"    minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListUsageResponse
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /account/usage [get]
func (h *Handlers) ListUsage(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "a registered account is required")
		return
	}
	db := h.db()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "storage unavailable")
		return
	}
	page, pageSize := clampPagination(c)

	total, err := repo.CountProviderCalls(ctx, db, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	calls, err := repo.ListProviderCalls(ctx, db, uid, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListUsageResponse{
		Calls: calls,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetUsageCall godoc
// @ID          getUsageCall
// @Summary     One provider call with its message turns
// @Description Returns a single call record together with its prompt/response turns in order. Calls belonging to other users read as 404.
// @Tags        Account
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"          example(user123)
// @Param       id         path    string  true  "Provider call id"
//
// @Success     200  {object}  handlers.UsageCallResponse
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown call id"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /account/usage/{id} [get]
func (h *Handlers) GetUsageCall(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "a registered account is required")
		return
	}
	db := h.db()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "storage unavailable")
		return
	}

	call, err := repo.FindProviderCall(ctx, db, uid, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "provider call not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	msgs, err := repo.ListCallMessages(ctx, db, call.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, UsageCallResponse{Call: *call, Messages: msgs})
}
