package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func secRouter(opt SecurityOptions, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	for _, mw := range pre {
		r.Use(mw)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func secGet(r *gin.Engine, mutate func(*http.Request)) http.Header {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := secGet(secRouter(SecurityOptions{}), nil)

	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers wrong: %#v", h)
	}
	// Everything optional stays off by default.
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Strict-Transport-Security"} {
		if h.Get(k) != "" {
			t.Fatalf("%s should not be set: %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_OptionalSets(t *testing.T) {
	r := secRouter(SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	})
	h := secGet(r, func(req *http.Request) { req.TLS = &tls.ConnectionState{} })

	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("policy headers missing: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("cache headers missing: %#v", h)
	}
	if got := h.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}
}

func TestSecurityHeaders_HSTSOnlyOverTLS(t *testing.T) {
	r := secRouter(SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour})

	// Plain HTTP never gets HSTS, even when enabled.
	if got := secGet(r, nil).Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS on plain HTTP: %q", got)
	}
	// Proxy-terminated TLS is recognized via X-Forwarded-Proto.
	h := secGet(r, func(req *http.Request) { req.Header.Set("X-Forwarded-Proto", "HTTPS") })
	if got := h.Get("Strict-Transport-Security"); got != "max-age=3600; includeSubDomains; preload" {
		t.Fatalf("HSTS via forwarded proto = %q", got)
	}
}

func TestSecurityHeaders_ExposeRequestID(t *testing.T) {
	setRID := func(rid, expose string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Header("X-Request-ID", rid)
			if expose != "" {
				c.Header("Access-Control-Expose-Headers", expose)
			}
			c.Next()
		}
	}

	// Added when absent.
	h := secGet(secRouter(SecurityOptions{}, setRID("rid-1", "")), nil)
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
		t.Fatalf("expose header = %q", got)
	}

	// Appended to an existing list.
	h = secGet(secRouter(SecurityOptions{}, setRID("rid-2", "Foo")), nil)
	if got := h.Get("Access-Control-Expose-Headers"); got != "Foo, X-Request-ID" {
		t.Fatalf("expose header = %q", got)
	}

	// Never duplicated.
	h = secGet(secRouter(SecurityOptions{}, setRID("rid-3", "X-Request-ID, Foo")), nil)
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID, Foo" {
		t.Fatalf("expose header = %q", got)
	}
}
