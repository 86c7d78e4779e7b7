package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/cuentos-backend/internal/identity"
)

// voterIDKey is the Gin context key holding the resolved voter identity.
const voterIDKey = "voterID"

// Identity resolves the anonymous voter identity for every request and stores
// it under the "voterID" Gin key. A well-formed X-Voter-Fingerprint header is
// used verbatim; otherwise the identity is derived from the request signals.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(voterIDKey, identity.Resolve(c.Request))
		c.Next()
	}
}

// VoterID returns the identity stored by Identity, or "" when the middleware
// did not run.
func VoterID(c *gin.Context) string {
	if v, ok := c.Get(voterIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// voterPrefix shortens an identity for logs and rate-limit keys.
func voterPrefix(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
