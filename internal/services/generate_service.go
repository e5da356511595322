// Package services – GenerateService
//
// Generation turns a stored resume and job posting into a derived artifact:
// a roast with a fit score, a cover letter, an optimized resume, or an
// interview prep sheet. Every artifact is content-addressed over the exact
// inputs that determined it (source hashes, kind, options, prompt version,
// model), so repeating a request is a cache hit. Generation always requires
// a registered caller; the ledger is charged once per produced artifact.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/hash"
	"github.com/Jwuthri/resume-roaster/internal/repo"
)

// GenerateInput describes one artifact request.
type GenerateInput struct {
	Kind   string
	UserID string

	ResumeHash string
	JobHash    string

	Provider string
	Model    string

	// Kind-specific options. Unused ones stay empty and do not perturb
	// the fingerprint of other kinds.
	Tone       string
	TemplateID string
	Difficulty string

	BypassCache bool
}

// GenerateResult is the generation response.
type GenerateResult struct {
	Artifact *domain.GeneratedArtifact
	Cached   bool
	Usage    ai.Usage
	CostUSD  string
	Duration time.Duration
}

// GenerateService produces derived artifacts from stored inputs.
type GenerateService struct {
	DB        *gorm.DB
	Clients   ClientFactory
	Ledger    *LedgerService
	Telemetry *TelemetryRecorder

	MaxTokens   int
	Temperature float64

	group singleflight.Group
}

// Generate runs one artifact request end to end.
func (s *GenerateService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	tr := otel.Tracer("services/GenerateService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(attribute.String("artifact.kind", in.Kind)),
	)
	defer span.End()

	if !domain.ValidArtifactKind(in.Kind) {
		return nil, ErrUnknownKind
	}
	if in.UserID == "" {
		return nil, ErrAuthRequired
	}

	start := time.Now()

	resume, err := repo.FindExtractedDocumentByHash(ctx, s.DB, in.ResumeHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	job, err := repo.FindJobPostingByHash(ctx, s.DB, in.JobHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobPostingNotFound
		}
		return nil, err
	}

	spec, err := ai.Resolve(in.Provider, in.Model)
	if err != nil {
		return nil, err
	}

	contentHash := hash.Fingerprint(in.Kind, resume.ContentHash, job.ContentHash,
		kindOption(in), kindPromptVersion(in.Kind), spec.ID)
	if in.BypassCache {
		// A forced regeneration inserts a fresh row under its own hash;
		// prior rows stay immutable.
		contentHash = hash.Fingerprint(contentHash, uuid.NewString())
	} else {
		if a, ferr := repo.FindArtifactByHash(ctx, s.DB, in.Kind, contentHash); ferr == nil {
			return &GenerateResult{Artifact: a, Cached: true, CostUSD: "0", Duration: time.Since(start)}, nil
		} else if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, ferr
		}
	}

	v, err, _ := s.group.Do(in.Kind+"\x1f"+contentHash, func() (any, error) {
		return s.generateMiss(ctx, in, resume, job, spec, contentHash)
	})
	if err != nil {
		return nil, err
	}
	res := v.(*GenerateResult)
	res.Duration = time.Since(start)
	return res, nil
}

// generateMiss performs the post-miss half: quota, invocation, persistence,
// telemetry and usage accounting.
func (s *GenerateService) generateMiss(ctx context.Context, in GenerateInput, resume *domain.ExtractedDocument, job *domain.ExtractedJobPosting, spec ai.ModelSpec, contentHash string) (*GenerateResult, error) {
	st, err := s.Ledger.CheckQuota(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !st.Allowed {
		return nil, ErrQuotaExceeded
	}

	prompt, system, schema, version := kindPrompt(in, resume.Payload, job.Payload)

	client := s.Clients.ClientFor(spec)
	callStart := time.Now()
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
			provider:     spec.Provider,
			model:        spec.ID,
			operation:    "generate_" + in.Kind,
			userID:       in.UserID,
			status:       status,
			artifactKind: in.Kind,
			prompt:       prompt,
			durationMs:   time.Since(callStart).Milliseconds(),
		})
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	parsed := ai.ParseStructured(resp.Content, schema)
	payload := structuredPayload(parsed)

	uid := in.UserID
	artifact := &domain.GeneratedArtifact{
		Kind:          in.Kind,
		ContentHash:   contentHash,
		OwnerID:       &uid,
		Payload:       payload,
		SchemaVersion: version,
		Tone:          in.Tone,
		Difficulty:    in.Difficulty,
	}
	if in.Kind == domain.KindRoast && parsed.Structured() {
		score, keywords := roastMetadata(parsed.Data)
		artifact.Score = score
		artifact.MatchedKeywords = keywords
	}

	created, err := repo.CreateArtifact(ctx, s.DB, artifact)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			created, err = repo.FindArtifactByHash(ctx, s.DB, in.Kind, contentHash)
		}
		if err != nil {
			return nil, err
		}
	}

	s.Telemetry.Record(ctx, callRecord{
		provider:     spec.Provider,
		model:        spec.ID,
		operation:    "generate_" + in.Kind,
		userID:       in.UserID,
		status:       domain.CallCompleted,
		artifactKind: in.Kind,
		artifactID:   created.ID,
		prompt:       prompt,
		response:     resp.Content,
		usage:        resp.Usage,
		costUSD:      resp.CostUSD.StringFixed(6),
		durationMs:   resp.Duration.Milliseconds(),
	})

	if uerr := s.Ledger.RecordUsage(ctx, in.UserID, st.UseBonus); uerr != nil {
		trace.SpanFromContext(ctx).RecordError(uerr)
	}

	return &GenerateResult{
		Artifact: created,
		Usage:    resp.Usage,
		CostUSD:  resp.CostUSD.StringFixed(6),
	}, nil
}

// kindOption returns the option value that participates in the fingerprint
// for the given kind.
func kindOption(in GenerateInput) string {
	switch in.Kind {
	case domain.KindCoverLetter:
		return in.Tone
	case domain.KindOptimizedResume:
		return in.TemplateID
	case domain.KindInterviewPrep:
		return in.Difficulty
	}
	return ""
}

// kindPromptVersion maps a kind to its prompt version tag.
func kindPromptVersion(kind string) string {
	switch kind {
	case domain.KindRoast:
		return promptVersionRoast
	case domain.KindCoverLetter:
		return promptVersionCover
	case domain.KindOptimizedResume:
		return promptVersionOptimize
	case domain.KindInterviewPrep:
		return promptVersionInterview
	}
	return ""
}

// kindPrompt builds the prompt, system prompt, schema and schema version
// for the given kind.
func kindPrompt(in GenerateInput, resumePayload, jobPayload string) (prompt, system, schema string, version int) {
	switch in.Kind {
	case domain.KindRoast:
		return roastPrompt(resumePayload, jobPayload), roastSystemPrompt, roastSchemaV1, roastSchemaVersion
	case domain.KindCoverLetter:
		return coverLetterPrompt(resumePayload, jobPayload, in.Tone), roastSystemPrompt, coverSchemaV1, coverSchemaVersion
	case domain.KindOptimizedResume:
		return optimizedResumePrompt(resumePayload, jobPayload, in.TemplateID), roastSystemPrompt, resumeSchemaV1, optimizeSchemaVersion
	default:
		return interviewPrepPrompt(resumePayload, jobPayload, in.Difficulty), roastSystemPrompt, interviewSchemaV1, interviewSchemaVersion
	}
}

// roastMetadata pulls the fit score and matched keywords out of a
// structured roast payload for the indexed side columns.
func roastMetadata(data json.RawMessage) (*int, string) {
	var body struct {
		Score           *int     `json:"score"`
		MatchedKeywords []string `json:"matched_keywords"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, ""
	}
	return body.Score, strings.Join(body.MatchedKeywords, ",")
}
