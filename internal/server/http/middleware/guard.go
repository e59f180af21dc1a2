package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/travelpay/internal/pkg/audit"
)

const (
	csrfHeaderName = "x-csrf-token"
	csrfCookieName = "csrf_token"
)

// FeatureEnabled blocks the route unless enabled is set.
func FeatureEnabled(enabled bool, recorder audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			deny(c, recorder, http.StatusForbidden, "feature_disabled", "refunds are disabled")
			return
		}
		c.Next()
	}
}

// CSRFDoubleSubmit requires the x-csrf-token header to equal the csrf_token cookie.
func CSRFDoubleSubmit(recorder audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(csrfHeaderName)
		cookie, err := c.Cookie(csrfCookieName)
		if header == "" || err != nil || cookie == "" {
			deny(c, recorder, http.StatusForbidden, "csrf_missing", "csrf token required")
			return
		}
		if subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1 {
			deny(c, recorder, http.StatusForbidden, "csrf_mismatch", "csrf token mismatch")
			return
		}
		c.Next()
	}
}
