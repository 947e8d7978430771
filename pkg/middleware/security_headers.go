package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders adds the response headers expected from a JSON API.
// Risk scores are recomputed on every read, so responses are never cacheable.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")

		c.Next()
	}
}
