// Resume HTTP handlers.
//
// This file exposes REST endpoints for resume resources:
//   - POST   /resumes                    (upload + extract)
//   - GET    /resumes                    (list, paginated, ETag support)
//   - GET    /resumes/{hash}             (fetch extraction by content hash)
//   - POST   /resumes/{hash}/summarize   (condensed variant)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/repo"
	"github.com/Jwuthri/resume-roaster/internal/services"
	"github.com/Jwuthri/resume-roaster/internal/utils"
)

//
// Service contracts (context-aware)
//

// ResumeService defines resume extraction operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ResumeService interface {
	// Extract runs one upload through the extraction pipeline.
	Extract(ctx context.Context, in services.UploadInput) (*services.ExtractResult, error)
	// Summarize produces or returns the cached summary of an extraction.
	Summarize(ctx context.Context, userID, docHash, provider, model string) (*domain.SummarizedDocument, bool, error)
}

// JobService defines job posting operations consumed by HTTP handlers.
type JobService interface {
	// Ingest sanitizes, deduplicates and extracts one job description.
	Ingest(ctx context.Context, userID, rawText, provider, model string) (*services.JobResult, error)
	// Summarize produces or returns the cached summary of a job posting.
	Summarize(ctx context.Context, userID, jobHash, provider, model string) (*domain.SummarizedJobPosting, bool, error)
}

// ArtifactService defines artifact generation operations.
type ArtifactService interface {
	// Generate produces or returns the cached artifact for the input set.
	Generate(ctx context.Context, in services.GenerateInput) (*services.GenerateResult, error)
}

// QuotaService exposes the credit ledger to the account endpoints.
type QuotaService interface {
	// CheckQuota reports the caller's current allowance without consuming it.
	CheckQuota(ctx context.Context, accountID string) (*services.QuotaStatus, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for resumes, job postings, generation and
// accounts. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	resumeSvc ResumeService
	jobSvc    JobService
	genSvc    ArtifactService
	quotaSvc  QuotaService

	// defaultProvider/defaultModel substitute for empty selections on
	// AI-backed requests.
	defaultProvider string
	defaultModel    string
}

// New constructs a Handlers instance bound to the given services.
func New(resumeSvc ResumeService, jobSvc JobService, genSvc ArtifactService, quotaSvc QuotaService) *Handlers {
	return &Handlers{resumeSvc: resumeSvc, jobSvc: jobSvc, genSvc: genSvc, quotaSvc: quotaSvc}
}

// WithModelDefaults sets the provider and model applied when a request
// leaves them empty, and returns h for chaining.
func (h *Handlers) WithModelDefaults(provider, model string) *Handlers {
	h.defaultProvider = provider
	h.defaultModel = model
	return h
}

// modelOrDefault fills empty provider/model selections from the configured
// defaults.
func (h *Handlers) modelOrDefault(provider, model string) (string, string) {
	if provider == "" {
		provider = h.defaultProvider
	}
	if model == "" {
		model = h.defaultModel
	}
	return provider, model
}

// userID extracts the caller identity from Gin context (set by upstream
// middleware), falling back to the "X-User-ID" header. An empty result
// means the caller is anonymous; anonymous callers get the basic tier and
// no generation access.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

//
// DTOs
//

// ResponseMetadata groups the per-call telemetry of a success envelope.
type ResponseMetadata struct {
	TokensUsed       int    `json:"tokens_used"`
	InputTokens      int    `json:"input_tokens,omitempty"`
	OutputTokens     int    `json:"output_tokens,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	EstimatedCost    string `json:"estimated_cost"`
}

// telemetryMetadata builds the metadata block of a success envelope.
func telemetryMetadata(u ai.Usage, costUSD string, d time.Duration) ResponseMetadata {
	return ResponseMetadata{
		TokensUsed:       u.TotalTokens,
		InputTokens:      u.InputTokens,
		OutputTokens:     u.OutputTokens,
		ProcessingTimeMs: d.Milliseconds(),
		EstimatedCost:    costUSD,
	}
}

// ResumeResponse is the extraction result envelope.
type ResumeResponse struct {
	Success          bool             `json:"success"`
	Hash             string           `json:"hash"`
	FileHash         string           `json:"file_hash"`
	Cached           bool             `json:"cached"`
	ExtractionMethod string           `json:"extraction_method"`
	Provider         string           `json:"provider,omitempty"`
	Model            string           `json:"model,omitempty"`
	SchemaVersion    int              `json:"schema_version"`
	HasImages        bool             `json:"has_images"`
	ImageCount       int              `json:"image_count"`
	Payload          json.RawMessage  `json:"payload"`
	Metadata         ResponseMetadata `json:"metadata"`
}

// SummaryResponse wraps a cached or fresh summary.
type SummaryResponse struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash"`
	Cached  bool   `json:"cached"`
	Summary string `json:"summary"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListResumesResponse wraps a page of uploads and pagination information.
type ListResumesResponse struct {
	Resumes    []domain.RawDocument `json:"resumes"`
	Pagination Pagination           `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// resumeResponse maps a service result to the transport DTO.
func resumeResponse(res *services.ExtractResult) ResumeResponse {
	doc := res.Doc
	return ResumeResponse{
		Success:          true,
		Hash:             doc.ContentHash,
		FileHash:         fileHashOf(doc),
		Cached:           res.Cached,
		ExtractionMethod: doc.Method,
		Provider:         doc.Provider,
		Model:            doc.Model,
		SchemaVersion:    doc.SchemaVersion,
		HasImages:        res.HasImages,
		ImageCount:       res.ImageCount,
		Payload:          json.RawMessage(doc.Payload),
		Metadata:         telemetryMetadata(res.Usage, res.CostUSD, res.Duration),
	}
}

// fileHashOf returns the upload hash when the association was preloaded;
// empty otherwise.
func fileHashOf(doc *domain.ExtractedDocument) string {
	return doc.RawDocument.FileHash
}

//
// Handlers
//

// UploadResume godoc
// @ID          uploadResume
// @Summary     Upload a resume PDF and extract structured data
// @Description Accepts a multipart PDF upload, deduplicates it by content hash, and runs the selected extraction tier. Anonymous callers always get the basic (no-AI) tier.
// @Tags        Resumes
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       X-User-ID     header    string  false "User ID (empty = anonymous)" example(user123)
// @Param       file          formData  file    true  "Resume PDF"
// @Param       extraction_method  formData  string  false "basic | ai | auto (default auto)"
// @Param       provider      formData  string  false "openai | anthropic"
// @Param       model         formData  string  false "nano | mini | sonnet | opus"
// @Param       bypass_cache  formData  bool    false "Force a fresh extraction"
//
// @Success     200  {object}  handlers.ResumeResponse "Cached extraction"
// @Success     201  {object}  handlers.ResumeResponse "Fresh extraction"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     402  {object}  handlers.ErrorResponse  "Quota exhausted"
// @Failure     415  {object}  handlers.ErrorResponse  "Not a PDF"
// @Failure     502  {object}  handlers.ErrorResponse  "Provider failure"
// @Router      /resumes [post]
func (h *Handlers) UploadResume(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field 'file' is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot open uploaded file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "upload exceeds the size limit")
		return
	}

	method := strings.ToLower(strings.TrimSpace(c.PostForm("extraction_method")))
	if method == "" {
		// Shorthand accepted alongside the documented field name.
		method = strings.ToLower(strings.TrimSpace(c.PostForm("method")))
	}

	in := services.UploadInput{
		Filename:    fh.Filename,
		MimeType:    fh.Header.Get("Content-Type"),
		Data:        data,
		UserID:      userID(c),
		Method:      method,
		Provider:    strings.ToLower(strings.TrimSpace(c.PostForm("provider"))),
		Model:       strings.ToLower(strings.TrimSpace(c.PostForm("model"))),
		BypassCache: c.PostForm("bypass_cache") == "true",
	}
	if in.Method == "" {
		in.Method = services.RequestAuto
	}
	in.Provider, in.Model = h.modelOrDefault(in.Provider, in.Model)

	res, err := h.resumeSvc.Extract(c.Request.Context(), in)
	if err != nil {
		failFromService(c, err)
		return
	}
	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	ok(c, status, resumeResponse(res))
}

// ListResumes godoc
// @ID          listResumes
// @Summary     List uploaded resumes (paginated)
// @Description Returns a page of the user's uploads. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Resumes
// @Produce     json
//
// @Param       X-User-ID      header  string  true  "User ID"                      example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"   example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListResumesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Anonymous caller"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /resumes [get]
func (h *Handlers) ListResumes(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "a registered account is required")
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if db := h.db(); db != nil {
		count, maxTS, err := repo.DocumentsStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"resumes:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	db := h.db()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "storage unavailable")
		return
	}
	total, err := repo.CountDocuments(ctx, db, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	items, err := repo.ListDocumentsPage(ctx, db, uid, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListResumesResponse{
		Resumes: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetResume godoc
// @ID          getResume
// @Summary     Fetch an extraction by content hash
// @Tags        Resumes
// @Produce     json
//
// @Param       hash  path  string  true  "Extraction content hash"
//
// @Success     200  {object} handlers.ResumeResponse
// @Failure     404  {object} handlers.ErrorResponse "Unknown hash"
// @Router      /resumes/{hash} [get]
func (h *Handlers) GetResume(c *gin.Context) {
	db := h.db()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "storage unavailable")
		return
	}
	doc, err := repo.FindExtractedDocumentByHash(c.Request.Context(), db, c.Param("hash"))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "resume not found")
		return
	}
	ok(c, http.StatusOK, resumeResponse(&services.ExtractResult{Doc: doc, Cached: true, Method: doc.Method, CostUSD: "0"}))
}

// SummarizeResume godoc
// @ID          summarizeResume
// @Summary     Summarize an extracted resume
// @Description Produces (or returns the cached) condensed variant of an extraction. Registered users only; a fresh summary consumes one credit.
// @Tags        Resumes
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       hash       path    string  true  "Extraction content hash"
// @Param       body       body    handlers.ModelSelection  false "Provider/model override"
//
// @Success     200  {object}  handlers.SummaryResponse
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     402  {object}  handlers.ErrorResponse "Quota exhausted"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown hash"
// @Router      /resumes/{hash}/summarize [post]
func (h *Handlers) SummarizeResume(c *gin.Context) {
	var req ModelSelection
	_ = c.ShouldBindJSON(&req) // body is optional
	provider, model := h.modelOrDefault(strings.ToLower(req.Provider), strings.ToLower(req.Model))

	sum, cached, err := h.resumeSvc.Summarize(c.Request.Context(), userID(c), c.Param("hash"), provider, model)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, SummaryResponse{Success: true, Hash: sum.ContentHash, Cached: cached, Summary: sum.Summary})
}

// ModelSelection optionally overrides the provider/model of a call.
type ModelSelection struct {
	Provider string `json:"provider" example:"openai"`
	Model    string `json:"model"    example:"mini"`
}

// db reaches into the concrete extract service for repository access used
// by read-only endpoints and ETag pre-checks.
func (h *Handlers) db() *gorm.DB {
	if svc, ok := h.resumeSvc.(*services.ExtractService); ok {
		return svc.DB
	}
	return nil
}
