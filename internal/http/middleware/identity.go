// Caller identity resolution.
//
// The API trusts the X-User-ID header as the caller identity (upstream
// auth terminates elsewhere). This middleware promotes it into the Gin
// context once, early in the chain, so the rate limiter keys per user,
// the access log carries user_id, and handlers read one canonical value.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// userIDKey is the context key downstream consumers read the caller
// identity from (KeyByUserOrIP, the access log, handlers).
const userIDKey = "userID"

// identityHeader names the header carrying the caller's user id.
const identityHeader = "X-User-ID"

// Identity copies the caller's user id from the X-User-ID header into the
// request context. Anonymous requests (no header, or blank) set nothing.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader(identityHeader)); uid != "" {
			c.Set(userIDKey, uid)
		}
		c.Next()
	}
}
