// Package vision renders resume PDF pages to images by delegating to an
// external conversion microservice. Conversion is strictly best-effort: any
// network, timeout, or non-success failure yields an empty image list so
// the caller falls back to text extraction. A vision failure must never
// abort the overall request.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/rs/zerolog/log"
)

// maxPages is the hard cap on rendered pages regardless of configuration.
const maxPages = 3

// Converter is a client for the pdf-to-images conversion service.
type Converter struct {
	baseURL string
	pages   int
	client  *http.Client
}

// NewConverter builds a Converter for the given service base URL. pages is
// clamped to [1, 3]. An empty baseURL produces a disabled converter that
// always returns no images.
func NewConverter(baseURL string, pages int, timeout time.Duration) *Converter {
	if pages < 1 {
		pages = 1
	}
	if pages > maxPages {
		pages = maxPages
	}
	return &Converter{
		baseURL: baseURL,
		pages:   pages,
		client:  &http.Client{Timeout: timeout},
	}
}

// convertResponse is the service's JSON reply.
type convertResponse struct {
	Success bool     `json:"success"`
	Images  []string `json:"images"`
	Error   string   `json:"error,omitempty"`
}

// PDFToImages converts the first pages of a PDF to base64 image payloads.
// On any failure it logs and returns an empty slice; callers must treat an
// empty result as "no images available".
func (c *Converter) PDFToImages(ctx context.Context, pdfBytes []byte) []string {
	if c.baseURL == "" {
		return nil
	}

	body, contentType, err := buildMultipart(pdfBytes)
	if err != nil {
		log.Warn().Err(err).Msg("vision: building multipart body failed")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pdf-to-images", body)
	if err != nil {
		log.Warn().Err(err).Msg("vision: building request failed")
		return nil
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", c.baseURL).Msg("vision: conversion service unreachable")
		return nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		log.Warn().Err(err).Msg("vision: reading conversion response failed")
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Msg("vision: conversion service returned non-2xx")
		return nil
	}

	var out convertResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Msg("vision: decoding conversion response failed")
		return nil
	}
	if !out.Success {
		log.Warn().Str("error", out.Error).Msg("vision: conversion service reported failure")
		return nil
	}

	if len(out.Images) > c.pages {
		out.Images = out.Images[:c.pages]
	}
	return out.Images
}

// buildMultipart wraps the PDF bytes into a multipart body under field
// "file" with content type application/pdf.
func buildMultipart(pdfBytes []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="document.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(pdfBytes); err != nil {
		return nil, "", fmt.Errorf("write part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
