package ai

import (
	"errors"
	"testing"
)

func TestResolve_KnownPairs(t *testing.T) {
	cases := []struct {
		provider, tier, wantID string
		wantVision             bool
	}{
		{ProviderOpenAI, TierNano, "gpt-4.1-nano", false},
		{ProviderOpenAI, TierMini, "gpt-4o-mini", true},
		{ProviderAnthropic, TierSonnet, "claude-3-5-sonnet-20241022", true},
		{ProviderAnthropic, TierOpus, "claude-3-opus-20240229", true},
	}
	for _, tc := range cases {
		spec, err := Resolve(tc.provider, tc.tier)
		if err != nil {
			t.Fatalf("Resolve(%s,%s): %v", tc.provider, tc.tier, err)
		}
		if spec.ID != tc.wantID || spec.Vision != tc.wantVision {
			t.Fatalf("Resolve(%s,%s) = %+v", tc.provider, tc.tier, spec)
		}
	}
}

func TestResolve_Unknown(t *testing.T) {
	for _, pair := range [][2]string{
		{"openai", "opus"},    // opus is anthropic-only
		{"anthropic", "nano"}, // nano is openai-only
		{"", ""},
		{"mistral", "large"}, // unknown provider
		{"openai", "gpt-4o"}, // concrete id, not a tier
	} {
		if _, err := Resolve(pair[0], pair[1]); !errors.Is(err, ErrUnknownModel) {
			t.Fatalf("Resolve(%q,%q) expected ErrUnknownModel, got %v", pair[0], pair[1], err)
		}
	}
}

func TestVisionCapable(t *testing.T) {
	if VisionCapable(ProviderOpenAI, TierNano) {
		t.Fatalf("nano must not be vision-capable")
	}
	if !VisionCapable(ProviderAnthropic, TierSonnet) {
		t.Fatalf("sonnet must be vision-capable")
	}
	if VisionCapable("nope", "nope") {
		t.Fatalf("unknown pair must not be vision-capable")
	}
}

func TestModelSpecCost(t *testing.T) {
	spec, _ := Resolve(ProviderAnthropic, TierSonnet) // $3 in, $15 out per Mtok
	got := spec.cost(Usage{InputTokens: 1_000_000, OutputTokens: 200_000})
	if got.StringFixed(6) != "6.000000" {
		t.Fatalf("cost = %s, want 6.000000", got.StringFixed(6))
	}

	// Small call rounds to six digits without drifting.
	got = spec.cost(Usage{InputTokens: 123, OutputTokens: 45})
	if got.StringFixed(6) != "0.001044" {
		t.Fatalf("cost = %s, want 0.001044", got.StringFixed(6))
	}

	if !spec.cost(Usage{}).IsZero() {
		t.Fatalf("zero usage must cost zero")
	}
}
