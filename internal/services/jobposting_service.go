// Package services – JobPostingService
//
// Job descriptions arrive as pasted text, often copied straight out of a
// browser with markup and tracking junk attached. The service sanitizes the
// input, normalizes it, and content-addresses the normalized form so the
// same posting pasted twice costs one provider call. Anonymous callers get
// a structural, provider-free ingestion; registered callers get full AI
// extraction against the versioned job schema.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/hash"
	"github.com/Jwuthri/resume-roaster/internal/repo"
)

// JobPostingService ingests and summarizes job descriptions.
type JobPostingService struct {
	DB        *gorm.DB
	Clients   ClientFactory
	Ledger    *LedgerService
	Telemetry *TelemetryRecorder

	MaxTokens   int
	Temperature float64

	sanitizer *bluemonday.Policy
}

// NewJobPostingService wires the service with a strict HTML sanitizer.
func NewJobPostingService(db *gorm.DB, clients ClientFactory, ledger *LedgerService, telemetry *TelemetryRecorder, maxTokens int, temperature float64) *JobPostingService {
	return &JobPostingService{
		DB:          db,
		Clients:     clients,
		Ledger:      ledger,
		Telemetry:   telemetry,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// JobResult is the ingestion response.
type JobResult struct {
	Posting *domain.ExtractedJobPosting
	Cached  bool
}

// Ingest sanitizes, deduplicates and extracts one job description.
func (s *JobPostingService) Ingest(ctx context.Context, userID, rawText, provider, model string) (*JobResult, error) {
	tr := otel.Tracer("services/JobPostingService")
	ctx, span := tr.Start(ctx, "Ingest",
		trace.WithAttributes(attribute.Bool("registered", userID != "")),
	)
	defer span.End()

	text := s.clean(rawText)
	if text == "" {
		return nil, ErrEmptyJobText
	}

	var spec ai.ModelSpec
	registered := userID != ""
	if registered {
		resolved, err := ai.Resolve(provider, model)
		if err != nil {
			// Unknown model selectors fall back to the structural path
			// instead of failing the ingestion.
			registered = false
		} else {
			spec = resolved
		}
	}

	contentHash := hash.Fingerprint(promptVersionJob, text, spec.ID)
	span.SetAttributes(attribute.String("job.hash", contentHash[:12]))

	if jp, err := repo.FindJobPostingByHash(ctx, s.DB, contentHash); err == nil {
		return &JobResult{Posting: jp, Cached: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var payload string
	if registered {
		st, err := s.Ledger.CheckQuota(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !st.Allowed {
			return nil, ErrQuotaExceeded
		}
		payload, _, _, err = s.extract(ctx, userID, spec, text)
		if err != nil {
			return nil, err
		}
		defer func() {
			if uerr := s.Ledger.RecordUsage(ctx, userID, st.UseBonus); uerr != nil {
				span.RecordError(uerr)
			}
		}()
	} else {
		b, _ := json.Marshal(map[string]string{"raw_text": text})
		payload = string(b)
	}

	jp := &domain.ExtractedJobPosting{
		ContentHash:   contentHash,
		Payload:       payload,
		SchemaVersion: jobSchemaVersion,
		Provider:      spec.Provider,
		Model:         spec.ID,
	}
	created, err := repo.CreateJobPosting(ctx, s.DB, jp)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			winner, rerr := repo.FindJobPostingByHash(ctx, s.DB, contentHash)
			if rerr != nil {
				return nil, rerr
			}
			return &JobResult{Posting: winner, Cached: true}, nil
		}
		return nil, err
	}
	return &JobResult{Posting: created}, nil
}

// Summarize produces (or returns the cached) condensed variant of an
// ingested job posting. Registered users only.
func (s *JobPostingService) Summarize(ctx context.Context, userID, jobHash, provider, model string) (*domain.SummarizedJobPosting, bool, error) {
	tr := otel.Tracer("services/JobPostingService")
	ctx, span := tr.Start(ctx, "Summarize",
		trace.WithAttributes(attribute.String("job.hash", jobHash)),
	)
	defer span.End()

	if userID == "" {
		return nil, false, ErrAuthRequired
	}
	src, err := repo.FindJobPostingByHash(ctx, s.DB, jobHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrJobPostingNotFound
		}
		return nil, false, err
	}

	spec, err := ai.Resolve(provider, model)
	if err != nil {
		return nil, false, err
	}

	contentHash := hash.Fingerprint(promptVersionSummarize, src.ContentHash, spec.ID)
	if sum, ferr := repo.FindSummarizedJobPostingByHash(ctx, s.DB, contentHash); ferr == nil {
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

	body, _, _, err := s.call(ctx, userID, spec, "summarize_job", summarizePrompt(src.Payload), jobSystemPrompt, "")
	if err != nil {
		return nil, false, err
	}

	sum := &domain.SummarizedJobPosting{
		ContentHash: contentHash,
		SourceID:    src.ID,
		Summary:     summaryText(body),
	}
	created, err := repo.CreateSummarizedJobPosting(ctx, s.DB, sum)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			winner, rerr := repo.FindSummarizedJobPostingByHash(ctx, s.DB, contentHash)
			return winner, false, rerr
		}
		return nil, false, err
	}
	if uerr := s.Ledger.RecordUsage(ctx, userID, st.UseBonus); uerr != nil {
		span.RecordError(uerr)
	}
	return created, false, nil
}

// extract runs the AI extraction path against the job schema.
func (s *JobPostingService) extract(ctx context.Context, userID string, spec ai.ModelSpec, text string) (string, ai.Usage, string, error) {
	return s.call(ctx, userID, spec, "extract_job", jobExtractionPrompt(text), jobSystemPrompt, jobSchemaV1)
}

// call performs one provider invocation with telemetry. When schema is
// non-empty the response is parsed and validated against it; otherwise the
// raw text is returned.
func (s *JobPostingService) call(ctx context.Context, userID string, spec ai.ModelSpec, operation, prompt, system, schema string) (string, ai.Usage, string, error) {
	client := s.Clients.ClientFor(spec)
	resp, err := client.Invoke(ctx, ai.Request{
		Prompt:       prompt,
		SystemPrompt: system,
		MaxTokens:    s.MaxTokens,
		Temperature:  s.Temperature,
	})
	if err != nil {
		status := domain.CallFailed
		if errors.Is(err, ai.ErrTimeout) {
			status = domain.CallTimeout
		}
		ai.ObserveFailure(spec.Provider, spec.ID, status)
		s.Telemetry.Record(ctx, callRecord{
			provider:  spec.Provider,
			model:     spec.ID,
			operation: operation,
			userID:    userID,
			status:    status,
			prompt:    prompt,
		})
		return "", ai.Usage{}, "0", errors.Join(ErrProviderFailed, err)
	}

	body := resp.Content
	if schema != "" {
		body = structuredPayload(ai.ParseStructured(resp.Content, schema))
	}
	s.Telemetry.Record(ctx, callRecord{
		provider:   spec.Provider,
		model:      spec.ID,
		operation:  operation,
		userID:     userID,
		status:     domain.CallCompleted,
		prompt:     prompt,
		response:   resp.Content,
		usage:      resp.Usage,
		costUSD:    resp.CostUSD.StringFixed(6),
		durationMs: resp.Duration.Milliseconds(),
	})
	return body, resp.Usage, resp.CostUSD.StringFixed(6), nil
}

// clean strips markup, unescapes entities, and collapses whitespace so the
// fingerprint survives cosmetic variation of the same posting.
func (s *JobPostingService) clean(raw string) string {
	stripped := s.sanitizer.Sanitize(raw)
	return hash.NormalizeText(html.UnescapeString(stripped))
}
