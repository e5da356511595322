// Package services – ExtractService
//
// This file implements the resume extraction pipeline: fingerprint the
// upload, probe the content-addressed store, and on a miss select an
// extraction tier, optionally render page images, invoke a provider
// adapter, and persist the result plus telemetry. A cache hit returns the
// stored artifact without touching a provider.
//
// Concurrency: concurrent identical requests are collapsed in-process with
// singleflight; across processes the unique content-hash constraint wins
// the race and the loser re-reads the winning row. At-most-one stored row
// per hash is guaranteed; at-most-one external call is best-effort.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// hash prefixes and tier decisions.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/hash"
	"github.com/Jwuthri/resume-roaster/internal/pdf"
	"github.com/Jwuthri/resume-roaster/internal/repo"
)

// ClientFactory yields a provider adapter for a resolved model.
type ClientFactory interface {
	ClientFor(spec ai.ModelSpec) ai.Client
}

// PageRenderer converts PDF bytes to base64 page images, best-effort.
type PageRenderer interface {
	PDFToImages(ctx context.Context, pdfBytes []byte) []string
}

// TextExtractor extracts plain text locally (the basic tier).
type TextExtractor interface {
	ExtractText(data []byte) (*pdf.Document, error)
	PageCount(data []byte) (int, error)
}

// UploadInput is one extraction request.
type UploadInput struct {
	Filename string
	MimeType string
	Data     []byte

	// UserID is empty for anonymous callers.
	UserID string

	// Method is basic|ai|auto; Provider and Model select the AI backend
	// for ai/auto requests.
	Method   string
	Provider string
	Model    string

	// BypassCache forces a fresh extraction with its own stored row.
	BypassCache bool
}

// ExtractResult is the uniform response envelope of an extraction.
type ExtractResult struct {
	Doc        *domain.ExtractedDocument
	Cached     bool
	Method     string
	HasImages  bool
	ImageCount int
	Usage      ai.Usage
	CostUSD    string
	Duration   time.Duration
}

// ExtractService coordinates the extraction pipeline.
type ExtractService struct {
	DB        *gorm.DB
	Clients   ClientFactory
	Renderer  PageRenderer
	Extractor TextExtractor
	Ledger    *LedgerService
	Telemetry *TelemetryRecorder

	MaxTokens   int
	Temperature float64

	group singleflight.Group
}

// Extract runs one upload through the pipeline.
func (s *ExtractService) Extract(ctx context.Context, in UploadInput) (*ExtractResult, error) {
	tr := otel.Tracer("services/ExtractService")
	ctx, span := tr.Start(ctx, "Extract",
		trace.WithAttributes(
			attribute.String("method.requested", in.Method),
			attribute.Bool("registered", in.UserID != ""),
		),
	)
	defer span.End()

	if len(in.Data) == 0 {
		return nil, ErrEmptyFile
	}

	start := time.Now()
	fileHash := hash.Bytes(in.Data)

	pageCount, err := s.Extractor.PageCount(in.Data)
	if err != nil {
		return nil, ErrNotPDF
	}

	raw, images, err := s.ensureRawDocument(ctx, in, fileHash, pageCount)
	if err != nil {
		return nil, err
	}

	registered := in.UserID != ""
	decision := SelectTier(registered, in.Method, in.Provider, in.Model, len(images) > 0)
	span.SetAttributes(attribute.String("method.selected", decision.Method))

	contentHash := hash.Fingerprint(promptVersionExtract, fileHash, decision.Method, decision.Spec.ID)
	if in.BypassCache {
		// A forced regeneration is a distinct input set: salt the hash so
		// it inserts its own row instead of colliding with the cached one.
		contentHash = hash.Fingerprint(contentHash, uuid.NewString())
	} else {
		if doc, ferr := repo.FindExtractedDocumentByHash(ctx, s.DB, contentHash); ferr == nil {
			return &ExtractResult{
				Doc:        doc,
				Cached:     true,
				Method:     doc.Method,
				HasImages:  len(images) > 0,
				ImageCount: len(images),
				CostUSD:    "0",
				Duration:   time.Since(start),
			}, nil
		} else if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, ferr
		}
	}

	v, err, _ := s.group.Do(contentHash, func() (any, error) {
		return s.extractMiss(ctx, in, raw, images, decision, contentHash)
	})
	if err != nil {
		return nil, err
	}
	res := v.(*ExtractResult)
	res.Duration = time.Since(start)
	return res, nil
}

// ensureRawDocument finds or creates the upload row. Page images are
// rendered once, on first sight of the bytes, and reused from the stored
// row afterwards.
func (s *ExtractService) ensureRawDocument(ctx context.Context, in UploadInput, fileHash string, pageCount int) (*domain.RawDocument, []string, error) {
	raw, err := repo.FindRawDocumentByHash(ctx, s.DB, fileHash)
	if err == nil {
		return raw, decodeImages(raw.PageImages), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	var images []string
	if s.wantsImages(in) {
		images = s.Renderer.PDFToImages(ctx, in.Data)
	}

	doc := &domain.RawDocument{
		FileHash:   fileHash,
		Filename:   in.Filename,
		MimeType:   in.MimeType,
		PageImages: encodeImages(images),
		Metadata:   fmt.Sprintf(`{"byte_size":%d,"page_count":%d}`, len(in.Data), pageCount),
	}
	if in.UserID != "" {
		uid := in.UserID
		doc.OwnerID = &uid
	}
	created, cerr := repo.CreateRawDocument(ctx, s.DB, doc)
	if cerr != nil {
		if errors.Is(cerr, repo.ErrDuplicate) {
			// Another request won the upload race; use its row.
			if raw, err = repo.FindRawDocumentByHash(ctx, s.DB, fileHash); err == nil {
				return raw, decodeImages(raw.PageImages), nil
			}
			return nil, nil, err
		}
		return nil, nil, cerr
	}
	return created, images, nil
}

// wantsImages reports whether rendering pages could change the tier
// decision: the caller must be registered, must not have asked for basic,
// and the requested model must accept images.
func (s *ExtractService) wantsImages(in UploadInput) bool {
	if s.Renderer == nil || in.UserID == "" || in.Method == RequestBasic {
		return false
	}
	return ai.VisionCapable(in.Provider, in.Model)
}

// extractMiss performs the post-miss half of the pipeline: quota, tier
// execution, persistence, usage and telemetry.
func (s *ExtractService) extractMiss(ctx context.Context, in UploadInput, raw *domain.RawDocument, images []string, decision TierDecision, contentHash string) (*ExtractResult, error) {
	var quota *QuotaStatus
	if decision.Method != domain.MethodBasic {
		st, err := s.Ledger.CheckQuota(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if !st.Allowed {
			return nil, ErrQuotaExceeded
		}
		quota = st
	}

	payload, usage, costUSD, err := s.runTier(ctx, in, images, decision)
	if err != nil {
		return nil, err
	}

	doc := &domain.ExtractedDocument{
		ContentHash:   contentHash,
		RawDocumentID: raw.ID,
		Payload:       payload,
		SchemaVersion: resumeSchemaVersion,
		Method:        decision.Method,
		Provider:      decision.Spec.Provider,
		Model:         decision.Spec.ID,
	}
	created, err := repo.CreateExtractedDocument(ctx, s.DB, doc)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Someone else won the race after paying for their own call;
			// return the row that made it in.
			created, err = repo.FindExtractedDocumentByHash(ctx, s.DB, contentHash)
		}
		if err != nil {
			return nil, err
		}
	} else {
		// Create does not read the association back; fill it from the row
		// we already hold so fresh responses carry the file hash too.
		created.RawDocument = *raw
	}

	if quota != nil {
		if uerr := s.Ledger.RecordUsage(ctx, in.UserID, quota.UseBonus); uerr != nil {
			// The extraction succeeded and is persisted; usage accounting
			// failure must not fail the request.
			log.Error().Err(uerr).Str("userID", in.UserID).Msg("record usage failed")
		}
	}

	return &ExtractResult{
		Doc:        created,
		Method:     decision.Method,
		HasImages:  decision.Method == domain.MethodVision,
		ImageCount: imageCountFor(decision.Method, images),
		Usage:      usage,
		CostUSD:    costUSD,
	}, nil
}

// runTier executes the selected strategy and returns the payload JSON.
func (s *ExtractService) runTier(ctx context.Context, in UploadInput, images []string, decision TierDecision) (string, ai.Usage, string, error) {
	switch decision.Method {
	case domain.MethodBasic:
		doc, err := s.Extractor.ExtractText(in.Data)
		if err != nil {
			return "", ai.Usage{}, "0", ErrNotPDF
		}
		payload, _ := json.Marshal(map[string]any{
			"raw_text": doc.Text,
		})
		return string(payload), ai.Usage{}, "0", nil

	case domain.MethodText:
		doc, err := s.Extractor.ExtractText(in.Data)
		if err != nil {
			return "", ai.Usage{}, "0", ErrNotPDF
		}
		return s.invoke(ctx, in, decision.Spec, ai.Request{
			Prompt:       extractionPrompt(doc.Text),
			SystemPrompt: extractSystemPrompt,
			MaxTokens:    s.MaxTokens,
			Temperature:  s.Temperature,
		})

	case domain.MethodVision:
		return s.invoke(ctx, in, decision.Spec, ai.Request{
			Prompt:       visionExtractionPrompt(),
			Images:       images,
			SystemPrompt: extractSystemPrompt,
			MaxTokens:    s.MaxTokens,
			Temperature:  s.Temperature,
		})
	}
	return "", ai.Usage{}, "0", ErrUnknownKind
}

// invoke performs one provider call with telemetry on both outcomes and
// best-effort JSON parsing of the reply.
func (s *ExtractService) invoke(ctx context.Context, in UploadInput, spec ai.ModelSpec, req ai.Request) (string, ai.Usage, string, error) {
	client := s.Clients.ClientFor(spec)
	start := time.Now()
	resp, err := client.Invoke(ctx, req)
	if err != nil {
		status := domain.CallFailed
		if errors.Is(err, ai.ErrTimeout) {
			status = domain.CallTimeout
		}
		ai.ObserveFailure(spec.Provider, spec.ID, status)
		s.Telemetry.Record(ctx, callRecord{
			provider:   spec.Provider,
			model:      spec.ID,
			operation:  "extract_resume",
			userID:     in.UserID,
			status:     status,
			prompt:     req.Prompt,
			durationMs: time.Since(start).Milliseconds(),
		})
		return "", ai.Usage{}, "0", fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	parsed := ai.ParseStructured(resp.Content, resumeSchemaV1)
	payload := structuredPayload(parsed)

	s.Telemetry.Record(ctx, callRecord{
		provider:   spec.Provider,
		model:      spec.ID,
		operation:  "extract_resume",
		userID:     in.UserID,
		status:     domain.CallCompleted,
		prompt:     req.Prompt,
		response:   resp.Content,
		usage:      resp.Usage,
		costUSD:    resp.CostUSD.StringFixed(6),
		durationMs: resp.Duration.Milliseconds(),
	})
	return payload, resp.Usage, resp.CostUSD.StringFixed(6), nil
}

// Summarize produces (or returns the cached) condensed variant of an
// extracted resume. Registered users only.
func (s *ExtractService) Summarize(ctx context.Context, userID, docHash, provider, model string) (*domain.SummarizedDocument, bool, error) {
	tr := otel.Tracer("services/ExtractService")
	ctx, span := tr.Start(ctx, "Summarize",
		trace.WithAttributes(attribute.String("doc.hash", docHash)),
	)
	defer span.End()

	if userID == "" {
		return nil, false, ErrAuthRequired
	}
	src, err := repo.FindExtractedDocumentByHash(ctx, s.DB, docHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrDocumentNotFound
		}
		return nil, false, err
	}

	spec, err := ai.Resolve(provider, model)
	if err != nil {
		return nil, false, err
	}

	contentHash := hash.Fingerprint(promptVersionSummarize, src.ContentHash, spec.ID)
	if sum, ferr := repo.FindSummarizedDocumentByHash(ctx, s.DB, contentHash); ferr == nil {
		return sum, true, nil
	} else if !errors.Is(ferr, gorm.ErrRecordNotFound) {
		return nil, false, ferr
	}

	st, err := s.Ledger.CheckQuota(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !st.Allowed {
		return nil, false, ErrQuotaExceeded
	}

	in := UploadInput{UserID: userID}
	text, _, _, err := s.invoke(ctx, in, spec, ai.Request{
		Prompt:       summarizePrompt(src.Payload),
		SystemPrompt: extractSystemPrompt,
		MaxTokens:    s.MaxTokens,
		Temperature:  s.Temperature,
	})
	if err != nil {
		return nil, false, err
	}

	sum := &domain.SummarizedDocument{
		ContentHash: contentHash,
		SourceID:    src.ID,
		Summary:     summaryText(text),
	}
	created, err := repo.CreateSummarizedDocument(ctx, s.DB, sum)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			winner, rerr := repo.FindSummarizedDocumentByHash(ctx, s.DB, contentHash)
			return winner, false, rerr
		}
		return nil, false, err
	}
	if uerr := s.Ledger.RecordUsage(ctx, userID, st.UseBonus); uerr != nil {
		span.RecordError(uerr)
	}
	return created, false, nil
}

// --- helpers ---

// encodeImages serializes page images as a JSON array; empty input yields
// the empty string so the column stays NULL-ish for text-only uploads.
func encodeImages(images []string) string {
	if len(images) == 0 {
		return ""
	}
	b, _ := json.Marshal(images)
	return string(b)
}

// decodeImages is the inverse of encodeImages, tolerant of bad data.
func decodeImages(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// imageCountFor reports the images actually consumed by the chosen tier.
func imageCountFor(method string, images []string) int {
	if method != domain.MethodVision {
		return 0
	}
	return len(images)
}

// structuredPayload renders a StructuredResult as the stored payload JSON.
func structuredPayload(r *ai.StructuredResult) string {
	if r.Structured() {
		return string(r.Data)
	}
	b, _ := json.Marshal(map[string]string{"raw_text": r.RawText})
	return string(b)
}

// summaryText extracts the summary body from a stored payload fragment:
// plain text is kept as-is, a raw_text wrapper is unwrapped.
func summaryText(payload string) string {
	var wrapper struct {
		RawText string `json:"raw_text"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapper); err == nil && wrapper.RawText != "" {
		return wrapper.RawText
	}
	return payload
}
