// Provider-call telemetry as an explicit fire-and-forget side channel.
// Token spend already incurred against a provider must never be lost to a
// downstream failure, so the recorder writes on a detached context and
// reports problems to its own error log instead of the response path.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/repo"
)

// TelemetryRecorder persists ProviderCall rows best-effort.
type TelemetryRecorder struct {
	DB *gorm.DB
}

// callRecord captures everything the recorder needs about one invocation.
type callRecord struct {
	provider     string
	model        string
	operation    string
	userID       string
	status       string
	artifactKind string
	artifactID   string
	prompt       string
	response     string
	usage        ai.Usage
	costUSD      string
	durationMs   int64
}

// Record writes the call row and its prompt/response turns. The write runs
// on a context detached from the request so a canceled or failed request
// still records the spend it incurred; errors are logged, never returned.
func (t *TelemetryRecorder) Record(ctx context.Context, rec callRecord) {
	if t == nil || t.DB == nil {
		return
	}
	call := &domain.ProviderCall{
		Provider:     rec.provider,
		Model:        rec.model,
		Operation:    rec.operation,
		InputTokens:  rec.usage.InputTokens,
		OutputTokens: rec.usage.OutputTokens,
		TotalTokens:  rec.usage.TotalTokens,
		CostUSD:      rec.costUSD,
		Status:       rec.status,
		DurationMs:   rec.durationMs,
		ArtifactKind: rec.artifactKind,
		ArtifactID:   rec.artifactID,
	}
	if rec.userID != "" {
		call.UserID = &rec.userID
	}
	if call.CostUSD == "" {
		call.CostUSD = "0"
	}

	msgs := []domain.ProviderCallMessage{
		{
			Role:        "user",
			Content:     rec.prompt,
			InputTokens: rec.usage.InputTokens,
			CostUSD:     "0",
		},
		{
			Role:         "assistant",
			Content:      rec.response,
			OutputTokens: rec.usage.OutputTokens,
			CostUSD:      call.CostUSD,
		},
	}

	detached := context.WithoutCancel(ctx)
	if _, err := repo.CreateProviderCall(detached, t.DB, call, msgs); err != nil {
		log.Error().Err(err).
			Str("provider", rec.provider).
			Str("model", rec.model).
			Str("operation", rec.operation).
			Str("status", rec.status).
			Msg("telemetry write failed; provider spend not persisted")
	}
}
