// README: Bearer-token auth middleware; stores the verified caller on the gin context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripplanner/internal/infra"
)

const callerKey = "caller"

// Auth rejects requests without a valid "Authorization: Bearer <token>".
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			abortEnvelope(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		caller, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil || caller == nil || caller.UID == "" {
			abortEnvelope(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerUID returns the verified UID, or "" on unauthenticated routes.
func CallerUID(c *gin.Context) string {
	v, ok := c.Get(callerKey)
	if !ok {
		return ""
	}
	caller, _ := v.(*infra.Caller)
	if caller == nil {
		return ""
	}
	return caller.UID
}

// CallerKey identifies the caller for quota purposes: the verified UID when
// auth is on, the client IP otherwise. The IP comes from gin, which only reads
// forwarded headers from trusted proxies.
func CallerKey(c *gin.Context) string {
	if uid := CallerUID(c); uid != "" {
		return uid
	}
	return "ip:" + c.ClientIP()
}
