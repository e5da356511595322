// Artifact generation HTTP handlers.
//
// Endpoints:
//   - POST   /generate/roast
//   - POST   /generate/cover-letter
//   - POST   /generate/optimized-resume
//   - POST   /generate/interview-prep
//   - GET    /account/artifacts        (generation history)
//   - DELETE /account/artifacts/{id}
//
// All four share a request shape and differ only in the artifact kind and
// which option field they honor. Generation always requires a registered
// caller.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/repo"
	"github.com/Jwuthri/resume-roaster/internal/services"
	"github.com/Jwuthri/resume-roaster/internal/utils"
)

// GenerateRequest is the JSON payload shared by the generation endpoints.
type GenerateRequest struct {
	// ResumeHash references a stored extraction.
	ResumeHash string `json:"resume_hash" binding:"required" example:"9f86d081884c7d65..."`
	// JobHash references a stored job posting.
	JobHash  string `json:"job_hash" binding:"required" example:"60303ae22b998861..."`
	Provider string `json:"provider" example:"anthropic"`
	Model    string `json:"model"    example:"sonnet"`

	// Tone applies to cover letters only.
	Tone string `json:"tone,omitempty" example:"professional"`
	// TemplateID applies to optimized resumes only.
	TemplateID string `json:"template_id,omitempty" example:"modern"`
	// Difficulty applies to interview prep only.
	Difficulty string `json:"difficulty,omitempty" example:"senior"`

	// BypassCache forces a fresh generation stored as its own row.
	BypassCache bool `json:"bypass_cache,omitempty"`
}

// ArtifactResponse is the generation result envelope.
type ArtifactResponse struct {
	Success         bool             `json:"success"`
	ID              string           `json:"id"`
	Kind            string           `json:"kind"`
	Hash            string           `json:"hash"`
	Cached          bool             `json:"cached"`
	SchemaVersion   int              `json:"schema_version"`
	Score           *int             `json:"score,omitempty"`
	MatchedKeywords []string         `json:"matched_keywords,omitempty"`
	Tone            string           `json:"tone,omitempty"`
	Difficulty      string           `json:"difficulty,omitempty"`
	Payload         json.RawMessage  `json:"payload"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// GenerateRoast godoc
// @ID          generateRoast
// @Summary     Roast a resume against a job posting
// @Description Produces a brutally honest critique with a 0-100 fit score and matched keywords, or returns the cached one for identical inputs.
// @Tags        Generate
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Generation payload"
//
// @Success     200  {object}  handlers.ArtifactResponse "Cached artifact"
// @Success     201  {object}  handlers.ArtifactResponse "Fresh artifact"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     402  {object}  handlers.ErrorResponse "Quota exhausted"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown input hash"
// @Failure     502  {object}  handlers.ErrorResponse "Provider failure"
// @Router      /generate/roast [post]
func (h *Handlers) GenerateRoast(c *gin.Context) {
	h.generate(c, domain.KindRoast)
}

// GenerateCoverLetter godoc
// @ID          generateCoverLetter
// @Summary     Generate a tailored cover letter
// @Tags        Generate
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Generation payload (tone honored)"
//
// @Success     200  {object}  handlers.ArtifactResponse "Cached artifact"
// @Success     201  {object}  handlers.ArtifactResponse "Fresh artifact"
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     402  {object}  handlers.ErrorResponse "Quota exhausted"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown input hash"
// @Router      /generate/cover-letter [post]
func (h *Handlers) GenerateCoverLetter(c *gin.Context) {
	h.generate(c, domain.KindCoverLetter)
}

// GenerateOptimizedResume godoc
// @ID          generateOptimizedResume
// @Summary     Rewrite a resume optimized for a job posting
// @Tags        Generate
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Generation payload (template_id honored)"
//
// @Success     200  {object}  handlers.ArtifactResponse "Cached artifact"
// @Success     201  {object}  handlers.ArtifactResponse "Fresh artifact"
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     402  {object}  handlers.ErrorResponse "Quota exhausted"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown input hash"
// @Router      /generate/optimized-resume [post]
func (h *Handlers) GenerateOptimizedResume(c *gin.Context) {
	h.generate(c, domain.KindOptimizedResume)
}

// GenerateInterviewPrep godoc
// @ID          generateInterviewPrep
// @Summary     Generate interview prep questions and answers
// @Tags        Generate
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Generation payload (difficulty honored)"
//
// @Success     200  {object}  handlers.ArtifactResponse "Cached artifact"
// @Success     201  {object}  handlers.ArtifactResponse "Fresh artifact"
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     402  {object}  handlers.ErrorResponse "Quota exhausted"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown input hash"
// @Router      /generate/interview-prep [post]
func (h *Handlers) GenerateInterviewPrep(c *gin.Context) {
	h.generate(c, domain.KindInterviewPrep)
}

// generate is the shared implementation of the four kind-specific routes.
func (h *Handlers) generate(c *gin.Context, kind string) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	provider, model := h.modelOrDefault(strings.ToLower(req.Provider), strings.ToLower(req.Model))
	res, err := h.genSvc.Generate(c.Request.Context(), services.GenerateInput{
		Kind:        kind,
		UserID:      userID(c),
		ResumeHash:  strings.TrimSpace(req.ResumeHash),
		JobHash:     strings.TrimSpace(req.JobHash),
		Provider:    provider,
		Model:       model,
		Tone:        req.Tone,
		TemplateID:  req.TemplateID,
		Difficulty:  req.Difficulty,
		BypassCache: req.BypassCache,
	})
	if err != nil {
		failFromService(c, err)
		return
	}
	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	ok(c, status, artifactResponse(res))
}

// artifactResponse maps a service result to the transport DTO.
func artifactResponse(res *services.GenerateResult) ArtifactResponse {
	a := res.Artifact
	var keywords []string
	if a.MatchedKeywords != "" {
		keywords = strings.Split(a.MatchedKeywords, ",")
	}
	return ArtifactResponse{
		Success:         true,
		ID:              a.ID,
		Kind:            a.Kind,
		Hash:            a.ContentHash,
		Cached:          res.Cached,
		SchemaVersion:   a.SchemaVersion,
		Score:           a.Score,
		MatchedKeywords: keywords,
		Tone:            a.Tone,
		Difficulty:      a.Difficulty,
		Payload:         json.RawMessage(a.Payload),
		Metadata:        telemetryMetadata(res.Usage, res.CostUSD, res.Duration),
	}
}

// ListArtifactsResponse wraps the caller's recent generations.
type ListArtifactsResponse struct {
	Artifacts []domain.GeneratedArtifact `json:"artifacts"`
}

// ListArtifacts godoc
// @ID          listArtifacts
// @Summary     Recent generated artifacts
// @Description Returns the caller's most recent generations, newest first, optionally filtered by kind.
// @Tags        Generate
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"  example(user123)
// @Param       kind       query   string  false "roast | cover_letter | optimized_resume | interview_prep"
// @Param       limit      query   int     false "Max rows"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListArtifactsResponse
// @Failure     400  {object}  handlers.ErrorResponse "Unknown kind"
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /account/artifacts [get]
func (h *Handlers) ListArtifacts(c *gin.Context) {
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

	kind := strings.ToLower(strings.TrimSpace(c.Query("kind")))
	if kind != "" && !domain.ValidArtifactKind(kind) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown artifact kind")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	artifacts, err := repo.ListRecentArtifacts(ctx, db, uid, kind, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListArtifactsResponse{Artifacts: artifacts})
}

// DeleteArtifact godoc
// @ID          deleteArtifact
// @Summary     Delete one generated artifact
// @Description Removes one of the caller's artifact rows. Artifacts owned by other users read as 404.
// @Tags        Generate
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID"    example(user123)
// @Param       id         path    string  true  "Artifact id"
//
// @Success     204  {string}  string "No Content"
// @Failure     401  {object}  handlers.ErrorResponse "Anonymous caller"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown artifact id"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /account/artifacts/{id} [delete]
func (h *Handlers) DeleteArtifact(c *gin.Context) {
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

	if err := repo.DeleteArtifactByID(ctx, db, uid, c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "artifact not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
