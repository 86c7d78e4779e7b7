// Response headers for a JSON API read by the stories web client. Reaction
// state and identity are per voter, so those responses must not be shared by
// caches keyed only on the URL.

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions selects the optional headers. HSTS is only sent on HTTPS
// requests and HSTSMaxAge falls back to 180 days.
type SecurityOptions struct {
	EnableHSTS     bool
	HSTSMaxAge     time.Duration
	NoStore        bool // the feed changes on every tap
	EnablePolicy   bool // Permissions-Policy and X-Permitted-Cross-Domain-Policies
	VaryOnIdentity bool
}

// identityVary lists the request headers that feed the voter identity.
var identityVary = []string{"X-Voter-Fingerprint", "User-Agent", "Accept-Language"}

// SecurityHeaders always sends nosniff, X-Frame-Options: DENY and
// Referrer-Policy: no-referrer; the rest follows opt. The request ID is added
// to Access-Control-Expose-Headers so the web client can quote it when a
// post is rejected.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
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

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security",
				"max-age="+strconv.Itoa(maxAge)+"; includeSubDomains; preload")
		}

		// GET /stories/:id/reaction differs per voter for the same URL.
		if opt.VaryOnIdentity {
			for _, v := range identityVary {
				h.Add("Vary", v)
			}
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			cur := h.Get(hdr)
			if cur == "" {
				h.Set(hdr, "X-Request-ID")
			} else if !strings.Contains(cur, "X-Request-ID") {
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS trusts X-Forwarded-Proto from the proxy in front of the API.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
