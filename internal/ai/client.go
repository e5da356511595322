// Package ai provides a uniform call interface over the heterogeneous AI
// backends used for extraction and generation. One concrete Client exists
// per provider; call sites select an implementation through the model
// catalog instead of branching on provider strings.
package ai

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Model tiers exposed to callers. The catalog maps a (provider, tier) pair
// to the concrete model identifier and its rate-table entry.
const (
	TierNano   = "nano"
	TierMini   = "mini"
	TierSonnet = "sonnet"
	TierOpus   = "opus"
)

// ErrUnknownModel is returned when a (provider, tier) pair has no catalog
// entry. Callers fail closed to the cheapest extraction tier.
var ErrUnknownModel = errors.New("unknown provider/model combination")

// ErrTimeout is returned when a provider call exceeds its deadline. It is
// reported distinctly so telemetry can record a "timeout" status instead
// of a generic failure.
var ErrTimeout = errors.New("provider call timed out")

// Request is the normalized shape of one provider invocation.
type Request struct {
	// Prompt is the user-turn text.
	Prompt string
	// Images holds base64-encoded PNG page renderings for vision calls.
	Images []string
	// SystemPrompt optionally sets the system turn.
	SystemPrompt string
	// MaxTokens caps the output length.
	MaxTokens int
	// Temperature in [0,1].
	Temperature float64
}

// Usage aggregates token accounting for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response is the normalized result of one provider invocation.
type Response struct {
	// Content is the raw text returned by the model.
	Content string
	// Usage holds the provider-reported token counts.
	Usage Usage
	// CostUSD is computed from the static rate table at call time.
	CostUSD decimal.Decimal
	// Duration is the wall-clock latency of the HTTP round trip.
	Duration time.Duration
	// FinishReason is the provider's stop reason, normalized verbatim.
	FinishReason string
}

// Client is the uniform adapter contract. Implementations must be safe for
// concurrent use and must honor the context deadline; a deadline overrun is
// surfaced as ErrTimeout.
type Client interface {
	// Invoke performs a single model call. No retries: paid calls are
	// attempted exactly once.
	Invoke(ctx context.Context, req Request) (*Response, error)

	// Provider returns the provider name for telemetry.
	Provider() string

	// Model returns the concrete model identifier for telemetry.
	Model() string
}

// ModelSpec is one catalog entry: a concrete model id, its capabilities,
// and its rate-table row. Rates are USD per one million tokens and are
// versioned with the model identifiers, not retrieved dynamically.
type ModelSpec struct {
	ID            string
	Provider      string
	Tier          string
	Vision        bool
	InputPerMTok  decimal.Decimal
	OutputPerMTok decimal.Decimal
}

// catalog is the closed enumeration of supported (provider, tier) pairs.
var catalog = []ModelSpec{
	{
		ID:            "gpt-4.1-nano",
		Provider:      ProviderOpenAI,
		Tier:          TierNano,
		Vision:        false,
		InputPerMTok:  decimal.RequireFromString("0.10"),
		OutputPerMTok: decimal.RequireFromString("0.40"),
	},
	{
		ID:            "gpt-4o-mini",
		Provider:      ProviderOpenAI,
		Tier:          TierMini,
		Vision:        true,
		InputPerMTok:  decimal.RequireFromString("0.15"),
		OutputPerMTok: decimal.RequireFromString("0.60"),
	},
	{
		ID:            "claude-3-5-sonnet-20241022",
		Provider:      ProviderAnthropic,
		Tier:          TierSonnet,
		Vision:        true,
		InputPerMTok:  decimal.RequireFromString("3.00"),
		OutputPerMTok: decimal.RequireFromString("15.00"),
	},
	{
		ID:            "claude-3-opus-20240229",
		Provider:      ProviderAnthropic,
		Tier:          TierOpus,
		Vision:        true,
		InputPerMTok:  decimal.RequireFromString("15.00"),
		OutputPerMTok: decimal.RequireFromString("75.00"),
	},
}

// Resolve maps a (provider, tier) pair to its catalog entry. Unknown pairs
// return ErrUnknownModel.
func Resolve(provider, tier string) (ModelSpec, error) {
	for _, spec := range catalog {
		if spec.Provider == provider && spec.Tier == tier {
			return spec, nil
		}
	}
	return ModelSpec{}, ErrUnknownModel
}

// VisionCapable reports whether the (provider, tier) pair accepts page
// images. Unknown pairs are not vision-capable.
func VisionCapable(provider, tier string) bool {
	spec, err := Resolve(provider, tier)
	return err == nil && spec.Vision
}

// cost computes the USD cost of a call from the model's per-million-token
// rates, rounded to six fractional digits.
func (s ModelSpec) cost(u Usage) decimal.Decimal {
	million := decimal.NewFromInt(1_000_000)
	in := s.InputPerMTok.Mul(decimal.NewFromInt(int64(u.InputTokens))).Div(million)
	out := s.OutputPerMTok.Mul(decimal.NewFromInt(int64(u.OutputTokens))).Div(million)
	return in.Add(out).Round(6)
}
