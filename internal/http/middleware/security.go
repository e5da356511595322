// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file sets hardening headers for a JSON API that normally sits behind
// a reverse proxy. There is no CSP: the service never serves HTML, and a
// policy header would only confuse API clients.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers SecurityHeaders emits.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests.
	// Leave off unless the proxy-to-app hop is also TLS.
	EnableHSTS bool
	// HSTSMaxAge is the HSTS lifetime; non-positive values get 180 days.
	HSTSMaxAge time.Duration
	// NoStore adds Cache-Control: no-store for responses that must never
	// be cached. The API relies on ETag revalidation instead, so this is
	// off in the default stack.
	NoStore bool
	// EnablePolicy adds the browser feature-policy headers. Harmless for
	// non-browser clients.
	EnablePolicy bool
}

// SecurityHeaders returns a middleware adding a conservative header set:
// nosniff, frame denial, and no-referrer always; feature policies, cache
// suppression, and HSTS per the options. When an X-Request-ID response
// header is present it is appended to Access-Control-Expose-Headers so
// browser clients can read it for support tickets.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	hstsSeconds := int(opt.HSTSMaxAge.Seconds())
	if hstsSeconds <= 0 {
		hstsSeconds = int((180 * 24 * time.Hour).Seconds())
	}
	hstsValue := "max-age=" + strconv.Itoa(hstsSeconds) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		// Never on plain HTTP: a cached HSTS policy would lock clients out.
		if opt.EnableHSTS && requestIsHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const expose = "Access-Control-Expose-Headers"
			switch cur := h.Get(expose); {
			case cur == "":
				h.Set(expose, "X-Request-ID")
			case !strings.Contains(cur, "X-Request-ID"):
				h.Set(expose, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// requestIsHTTPS accepts direct TLS or a proxy-set X-Forwarded-Proto.
func requestIsHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
