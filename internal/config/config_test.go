package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Empty values fall through to defaults; scrub anything the host env may set.
	for _, k := range []string{"PORT", "GIN_MODE", "LOG_LEVEL", "API_BASE_PATH", "DEFAULT_PROVIDER", "DEFAULT_MODEL", "SWAGGER_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Fatalf("mode/level = %q/%q", cfg.GinMode, cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.MaxUploadSize != 10<<20 {
		t.Fatalf("MaxUploadSize = %d", cfg.MaxUploadSize)
	}
	if cfg.Providers.DefaultProvider != "openai" || cfg.Providers.DefaultModel != "mini" {
		t.Fatalf("provider defaults = %q/%q", cfg.Providers.DefaultProvider, cfg.Providers.DefaultModel)
	}
	if cfg.Quota.FreeLimit != 3 || cfg.Quota.PlusLimit != 100 || !cfg.Quota.BonusAfterTier {
		t.Fatalf("quota defaults = %+v", cfg.Quota)
	}
	if cfg.Converter.MaxPages != 3 {
		t.Fatalf("Converter.MaxPages = %d", cfg.Converter.MaxPages)
	}
	if cfg.Retention.AnonymousMaxAge != 30*24*time.Hour {
		t.Fatalf("Retention.AnonymousMaxAge = %v", cfg.Retention.AnonymousMaxAge)
	}
	if cfg.SwaggerEnabled {
		t.Fatalf("swagger must default off")
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("CONVERTER_MAX_PAGES", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.example , http://b.example ,")
	t.Setenv("QUOTA_FREE", "5")
	t.Setenv("QUOTA_BONUS_AFTER_TIER", "off")
	t.Setenv("DEFAULT_PROVIDER", "Anthropic")
	t.Setenv("DEFAULT_MODEL", "Sonnet")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("warning alias not applied: %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("invalid gin mode must normalize to release, got %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("base path not normalized: %q", cfg.APIBasePath)
	}
	if cfg.Converter.MaxPages != 3 {
		t.Fatalf("converter pages must clamp to 3, got %d", cfg.Converter.MaxPages)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[0] != "http://a.example" {
		t.Fatalf("CSV origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Quota.FreeLimit != 5 || cfg.Quota.BonusAfterTier {
		t.Fatalf("quota overrides = %+v", cfg.Quota)
	}
	if cfg.Providers.DefaultProvider != "anthropic" || cfg.Providers.DefaultModel != "sonnet" {
		t.Fatalf("provider overrides = %q/%q", cfg.Providers.DefaultProvider, cfg.Providers.DefaultModel)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad default provider", "DEFAULT_PROVIDER", "mistral"},
		{"bad default model", "DEFAULT_MODEL", "gpt-9000"},
		{"zero max upload", "MAX_UPLOAD_SIZE", "0"},
		{"negative quota", "QUOTA_FREE", "-1"},
		{"temperature out of range", "PROVIDER_TEMPERATURE", "1.5"},
		{"zero burst", "RATE_BURST", "0"},
		{"bad sample ratio", "OTEL_TRACES_SAMPLER_ARG", "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestGetBool(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"1", false, true},
		{"TRUE", false, true},
		{"yes", false, true},
		{" on ", false, true},
		{"0", true, false},
		{"False", true, false},
		{"off", true, false},
		{"maybe", false, false}, // unparseable keeps the default
		{"maybe", true, true},
		{"", true, true},
	}
	for _, tc := range cases {
		t.Setenv("X_BOOL", tc.value)
		if got := getbool("X_BOOL", tc.def); got != tc.want {
			t.Fatalf("getbool(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestGetDur(t *testing.T) {
	t.Setenv("X_DUR", "90s")
	if got := getdur("X_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("getdur = %v", got)
	}
	t.Setenv("X_DUR", "not-a-duration")
	if got := getdur("X_DUR", time.Minute); got != time.Minute {
		t.Fatalf("bad duration must fall back to default, got %v", got)
	}
}

func TestSplitCSV(t *testing.T) {
	if got := splitCSV(""); got != nil {
		t.Fatalf("empty input = %v", got)
	}
	got := splitCSV("a, b ,, c ,")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("splitCSV = %v", got)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/v1/", "/api/v1"},
		{" /api ", "/api"},
	}
	for _, tc := range cases {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
