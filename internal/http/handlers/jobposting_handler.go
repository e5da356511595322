// Job posting HTTP handlers.
//
// Endpoints:
//   - POST /job-postings                    (ingest pasted description)
//   - GET  /job-postings/{hash}             (fetch by content hash)
//   - POST /job-postings/{hash}/summarize   (condensed variant)
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jwuthri/resume-roaster/internal/repo"
)

// IngestJobRequest is the JSON payload for ingesting a job description.
type IngestJobRequest struct {
	// Text is the pasted job description; markup is stripped server-side.
	Text     string `json:"text" binding:"required" example:"Senior Go engineer..."`
	Provider string `json:"provider" example:"openai"`
	Model    string `json:"model"    example:"mini"`
}

// JobPostingResponse is the ingestion result envelope.
type JobPostingResponse struct {
	Success       bool            `json:"success"`
	Hash          string          `json:"hash"`
	Cached        bool            `json:"cached"`
	Provider      string          `json:"provider,omitempty"`
	Model         string          `json:"model,omitempty"`
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// IngestJobPosting godoc
// @ID          ingestJobPosting
// @Summary     Ingest a job description
// @Description Sanitizes and normalizes the pasted text, deduplicates it by content hash, and extracts structured fields. Anonymous callers get a structural, provider-free ingestion.
// @Tags        JobPostings
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (empty = anonymous)"  example(user123)
// @Param       body       body    handlers.IngestJobRequest  true  "Job description payload"
//
// @Success     200  {object}  handlers.JobPostingResponse "Cached ingestion"
// @Success     201  {object}  handlers.JobPostingResponse "Fresh ingestion"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     402  {object}  handlers.ErrorResponse "Quota exhausted"
// @Failure     502  {object}  handlers.ErrorResponse "Provider failure"
// @Router      /job-postings [post]
func (h *Handlers) IngestJobPosting(c *gin.Context) {
	var req IngestJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	provider, model := h.modelOrDefault(strings.ToLower(req.Provider), strings.ToLower(req.Model))
	res, err := h.jobSvc.Ingest(c.Request.Context(), userID(c), req.Text, provider, model)
	if err != nil {
		failFromService(c, err)
		return
	}
	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	jp := res.Posting
	ok(c, status, JobPostingResponse{
		Success:       true,
		Hash:          jp.ContentHash,
		Cached:        res.Cached,
		Provider:      jp.Provider,
		Model:         jp.Model,
		SchemaVersion: jp.SchemaVersion,
		Payload:       json.RawMessage(jp.Payload),
	})
}

// GetJobPosting godoc
// @ID          getJobPosting
// @Summary     Fetch an ingested job posting by content hash
// @Tags        JobPostings
// @Produce     json
//
// @Param       hash  path  string  true  "Job posting content hash"
//
// @Success     200  {object} handlers.JobPostingResponse
// @Failure     404  {object} handlers.ErrorResponse "Unknown hash"
// @Router      /job-postings/{hash} [get]
func (h *Handlers) GetJobPosting(c *gin.Context) {
	db := h.db()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "storage unavailable")
		return
	}
	jp, err := repo.FindJobPostingByHash(c.Request.Context(), db, c.Param("hash"))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "job posting not found")
		return
	}
	ok(c, http.StatusOK, JobPostingResponse{
		Success:       true,
		Hash:          jp.ContentHash,
		Cached:        true,
		Provider:      jp.Provider,
		Model:         jp.Model,
		SchemaVersion: jp.SchemaVersion,
		Payload:       json.RawMessage(jp.Payload),
	})
}

// SummarizeJobPosting godoc
// @ID          summarizeJobPosting
// @Summary     Summarize an ingested job posting
// @Description Produces (or returns the cached) condensed variant. Registered users only; a fresh summary consumes one credit.
// @Tags        JobPostings
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       hash       path    string  true  "Job posting content hash"
// @Param       body       body    handlers.ModelSelection  false "Provider/model override"
//
// @Success     200  {object}  handlers.SummaryResponse
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     402  {object}  handlers.ErrorResponse "Quota exhausted"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown hash"
// @Router      /job-postings/{hash}/summarize [post]
func (h *Handlers) SummarizeJobPosting(c *gin.Context) {
	var req ModelSelection
	_ = c.ShouldBindJSON(&req) // body is optional
	provider, model := h.modelOrDefault(strings.ToLower(req.Provider), strings.ToLower(req.Model))

	sum, cached, err := h.jobSvc.Summarize(c.Request.Context(), userID(c), c.Param("hash"), provider, model)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, SummaryResponse{Success: true, Hash: sum.ContentHash, Cached: cached, Summary: sum.Summary})
}
