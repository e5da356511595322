// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds RedactingLogger, the access logger. Resumes are dense with
// personal data, so the logger never touches request or response bodies and
// scrubs emails, phone numbers, UUIDs, and provider API keys out of the
// query string and headers before a line is written. It also attaches the
// request-scoped logger that LoggerFrom hands to handlers, so enriched log
// lines inherit the same scrubbed fields.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxQueryLog caps how much of the raw query string is logged.
const maxQueryLog = 2048

// Patterns applied to query strings and header values. Keys and UUIDs run
// before the phone pattern: it is the loosest and would otherwise eat the
// digit runs inside them.
var (
	apiKeyRE = regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{16,}\b`)
	uuidRE   = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE  = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only so UUID hex segments never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

func scrub(s string) string {
	if s == "" {
		return s
	}
	s = apiKeyRE.ReplaceAllString(s, "[REDACTED:key]")
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// RedactOptions configures RedactingLogger. MaskHeaders lists extra header
// names (case-insensitive) whose values are replaced wholesale with
// "[REDACTED]", on top of the built-in Authorization, Cookie, and Set-Cookie.
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger logs one structured line per request: method, route path,
// scrubbed query and headers, status, latency, and bytes written. Level
// follows the outcome (info, warn for 4xx, error for 5xx). A request-scoped
// logger carrying the same identity fields is stored for LoggerFrom.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		query := c.Request.URL.RawQuery
		if len(query) > maxQueryLog {
			query = query[:maxQueryLog]
		}
		query = scrub(query)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for name, vals := range c.Request.Header {
			if _, hide := masked[strings.ToLower(name)]; hide {
				safeHeaders[name] = "[REDACTED]"
				continue
			}
			safeHeaders[name] = scrub(strings.Join(vals, ", "))
		}

		rid := contextString(c, requestIDKey)
		reqLogger := log.With().
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &reqLogger)

		c.Next()

		status := c.Writer.Status()
		ev := reqLogger.Info()
		switch {
		case status >= 500:
			ev = reqLogger.Error()
		case status >= 400:
			ev = reqLogger.Warn()
		}
		ev.
			Str("user_id", contextString(c, userIDKey)).
			Str("remote_ip", c.ClientIP()).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
