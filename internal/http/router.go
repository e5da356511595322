// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/config"
	"github.com/Jwuthri/resume-roaster/internal/http/handlers"
	"github.com/Jwuthri/resume-roaster/internal/http/middleware"
	"github.com/Jwuthri/resume-roaster/internal/pdf"
	"github.com/Jwuthri/resume-roaster/internal/services"
	"github.com/Jwuthri/resume-roaster/internal/vision"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine, builds the service graph from db and cfg, and mounts the public
// API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: promote X-User-ID into the context
//  4. RedactingLogger: structured logs with secret scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter (uploads dominate request size)
//  7. Response compression (JSON payloads compress well)
//  8. Metrics
//  9. Rate limiter (per user/IP; read-only requests bypass)
// 10. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Resolve caller identity before logging and rate limiting
	r.Use(middleware.Identity())

	// 4) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
			"Authorization",
		},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit; resume PDFs are the largest payloads
	r.Use(limitBody(cfg.MaxUploadSize))

	// 7) Compress responses; extracted payloads and artifacts are JSON
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 8) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/cfg
	factory := ai.NewFactory(
		cfg.Providers.OpenAIKey, cfg.Providers.OpenAIBaseURL,
		cfg.Providers.AnthropicKey, cfg.Providers.AnthropicBaseURL,
		cfg.Providers.CallTimeout,
	)
	converter := vision.NewConverter(cfg.Converter.BaseURL, cfg.Converter.MaxPages, cfg.Converter.Timeout)
	ledger := services.NewLedgerService(db, cfg.Quota.FreeLimit, cfg.Quota.PlusLimit, cfg.Quota.BonusAfterTier)
	telemetry := &services.TelemetryRecorder{DB: db}

	extractSvc := &services.ExtractService{
		DB:          db,
		Clients:     factory,
		Renderer:    converter,
		Extractor:   pdf.Extractor{},
		Ledger:      ledger,
		Telemetry:   telemetry,
		MaxTokens:   cfg.Providers.MaxTokens,
		Temperature: cfg.Providers.Temperature,
	}
	jobSvc := services.NewJobPostingService(db, factory, ledger, telemetry,
		cfg.Providers.MaxTokens, cfg.Providers.Temperature)
	genSvc := &services.GenerateService{
		DB:          db,
		Clients:     factory,
		Ledger:      ledger,
		Telemetry:   telemetry,
		MaxTokens:   cfg.Providers.MaxTokens,
		Temperature: cfg.Providers.Temperature,
	}
	h := handlers.New(extractSvc, jobSvc, genSvc, ledger).
		WithModelDefaults(cfg.Providers.DefaultProvider, cfg.Providers.DefaultModel)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Resumes
		api.POST("/resumes", h.UploadResume)
		api.GET("/resumes", h.ListResumes)
		api.GET("/resumes/:hash", h.GetResume)
		api.POST("/resumes/:hash/summarize", h.SummarizeResume)

		// Job postings
		api.POST("/job-postings", h.IngestJobPosting)
		api.GET("/job-postings/:hash", h.GetJobPosting)
		api.POST("/job-postings/:hash/summarize", h.SummarizeJobPosting)

		// Generation
		api.POST("/generate/roast", h.GenerateRoast)
		api.POST("/generate/cover-letter", h.GenerateCoverLetter)
		api.POST("/generate/optimized-resume", h.GenerateOptimizedResume)
		api.POST("/generate/interview-prep", h.GenerateInterviewPrep)

		// Account
		api.GET("/account/quota", h.GetQuota)
		api.GET("/account/usage", h.ListUsage)
		api.GET("/account/usage/:id", h.GetUsageCall)
		api.GET("/account/artifacts", h.ListArtifacts)
		api.DELETE("/account/artifacts/:id", h.DeleteArtifact)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
