// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, AI provider credentials,
// quota limits, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "resume-roaster")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ProvidersConfig holds AI provider credentials and call defaults.
type ProvidersConfig struct {
	OpenAIKey        string        // OPENAI_API_KEY
	OpenAIBaseURL    string        // OPENAI_BASE_URL
	AnthropicKey     string        // ANTHROPIC_API_KEY
	AnthropicBaseURL string        // ANTHROPIC_BASE_URL
	DefaultProvider  string        // DEFAULT_PROVIDER: openai|anthropic
	DefaultModel     string        // DEFAULT_MODEL: nano|mini|sonnet|opus
	CallTimeout      time.Duration // PROVIDER_TIMEOUT per external call
	MaxTokens        int           // PROVIDER_MAX_TOKENS default output cap
	Temperature      float64       // PROVIDER_TEMPERATURE in [0,1]
}

// ConverterConfig holds settings for the external pdf-to-images service.
type ConverterConfig struct {
	BaseURL  string        // CONVERTER_BASE_URL (empty disables vision)
	Timeout  time.Duration // CONVERTER_TIMEOUT
	MaxPages int           // CONVERTER_MAX_PAGES (hard cap 3)
}

// QuotaConfig holds subscription tier limits and the bonus-credit policy.
type QuotaConfig struct {
	FreeLimit      int  // QUOTA_FREE monthly operations (tier "free")
	PlusLimit      int  // QUOTA_PLUS monthly operations (tier "plus")
	BonusAfterTier bool // QUOTA_BONUS_AFTER_TIER: consume bonus credits only once the tier quota is exhausted
}

// RetentionConfig controls the purge of anonymous uploads.
type RetentionConfig struct {
	AnonymousMaxAge time.Duration // RETENTION_ANON_MAX_AGE (0 disables)
	SweepInterval   time.Duration // RETENTION_SWEEP_INTERVAL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath        string // SQLite path
	MaxUploadSize int64  // bytes accepted for resume uploads

	// Domain
	Providers ProvidersConfig
	Converter ConverterConfig
	Quota     QuotaConfig
	Retention RetentionConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:        getenv("DB_PATH", "app.db"),
		MaxUploadSize: int64(getint("MAX_UPLOAD_SIZE", 10<<20)),

		// Providers
		Providers: ProvidersConfig{
			OpenAIKey:        getenv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			AnthropicKey:     getenv("ANTHROPIC_API_KEY", ""),
			AnthropicBaseURL: getenv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
			DefaultProvider:  strings.ToLower(getenv("DEFAULT_PROVIDER", "openai")),
			DefaultModel:     strings.ToLower(getenv("DEFAULT_MODEL", "mini")),
			CallTimeout:      getdur("PROVIDER_TIMEOUT", 120*time.Second),
			MaxTokens:        getint("PROVIDER_MAX_TOKENS", 4096),
			Temperature:      getfloat("PROVIDER_TEMPERATURE", 0.3),
		},

		// Converter
		Converter: ConverterConfig{
			BaseURL:  getenv("CONVERTER_BASE_URL", ""),
			Timeout:  getdur("CONVERTER_TIMEOUT", 30*time.Second),
			MaxPages: getint("CONVERTER_MAX_PAGES", 3),
		},

		// Quota
		Quota: QuotaConfig{
			FreeLimit:      getint("QUOTA_FREE", 3),
			PlusLimit:      getint("QUOTA_PLUS", 100),
			BonusAfterTier: getbool("QUOTA_BONUS_AFTER_TIER", true),
		},

		// Retention
		Retention: RetentionConfig{
			AnonymousMaxAge: getdur("RETENTION_ANON_MAX_AGE", 30*24*time.Hour),
			SweepInterval:   getdur("RETENTION_SWEEP_INTERVAL", 6*time.Hour),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "resume-roaster"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Converter.MaxPages > 3 {
		cfg.Converter.MaxPages = 3
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.MaxUploadSize <= 0 {
		return cfg, errors.New("MAX_UPLOAD_SIZE must be > 0")
	}
	switch cfg.Providers.DefaultProvider {
	case "openai", "anthropic":
	default:
		return cfg, errors.New("DEFAULT_PROVIDER must be openai or anthropic")
	}
	switch cfg.Providers.DefaultModel {
	case "nano", "mini", "sonnet", "opus":
	default:
		return cfg, errors.New("DEFAULT_MODEL must be one of: nano, mini, sonnet, opus")
	}
	if cfg.Providers.CallTimeout <= 0 {
		return cfg, errors.New("PROVIDER_TIMEOUT must be > 0")
	}
	if cfg.Providers.MaxTokens <= 0 {
		return cfg, errors.New("PROVIDER_MAX_TOKENS must be > 0")
	}
	if cfg.Providers.Temperature < 0 || cfg.Providers.Temperature > 1 {
		return cfg, errors.New("PROVIDER_TEMPERATURE must be in [0,1]")
	}
	if cfg.Converter.Timeout <= 0 {
		return cfg, errors.New("CONVERTER_TIMEOUT must be > 0")
	}
	if cfg.Converter.MaxPages < 1 {
		return cfg, errors.New("CONVERTER_MAX_PAGES must be >= 1")
	}
	if cfg.Quota.FreeLimit < 0 || cfg.Quota.PlusLimit < 0 {
		return cfg, errors.New("quota limits must be >= 0")
	}
	if cfg.Retention.AnonymousMaxAge < 0 {
		return cfg, errors.New("RETENTION_ANON_MAX_AGE must be >= 0")
	}
	if cfg.Retention.SweepInterval <= 0 {
		return cfg, errors.New("RETENTION_SWEEP_INTERVAL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
