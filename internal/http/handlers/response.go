// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints:
// structured error envelopes, consistent JSON serialization, and helpers for
// common HTTP patterns. The goal is uniform responses for both success and
// failure cases, machine-friendly and predictable.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx responses
//     are logged with request context for observability.
//   - `ok()` writes success responses in a consistent shape across handlers.
//
// Example error response:
//
//	HTTP/1.1 402 Payment Required
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "quota_exceeded",
//	  "message": "monthly quota exhausted"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/http/middleware"
	"github.com/Jwuthri/resume-roaster/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: correlation ID echoed from X-Request-ID, used to correlate
//     server logs with client-side errors.
//   - Code: a stable, machine-readable string (see errors.go constants).
//   - Message: a human-readable description, safe for display to users.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// failFromService translates service-layer sentinel errors into the HTTP
// error taxonomy. Unrecognized errors become a generic 500 so internal
// details never leak to clients.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyFile):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "uploaded file is empty")
	case errors.Is(err, services.ErrNotPDF):
		fail(c, http.StatusUnsupportedMediaType, ErrCodeUnsupportedMedia, "file is not a readable PDF")
	case errors.Is(err, services.ErrEmptyJobText):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "job description text is empty")
	case errors.Is(err, services.ErrDocumentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "resume not found")
	case errors.Is(err, services.ErrJobPostingNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "job posting not found")
	case errors.Is(err, services.ErrAuthRequired):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "a registered account is required")
	case errors.Is(err, services.ErrQuotaExceeded):
		fail(c, http.StatusPaymentRequired, ErrCodeQuotaExceeded, "monthly quota exhausted")
	case errors.Is(err, services.ErrUnknownKind):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown artifact kind")
	case errors.Is(err, ai.ErrUnknownModel):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown provider or model")
	case errors.Is(err, services.ErrProviderFailed):
		fail(c, http.StatusBadGateway, ErrCodeProviderFailed, "upstream provider call failed")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}
