package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/scamwatch/pkg/logger"
	"go.uber.org/zap"
)

// quietPaths are probe endpoints that would otherwise flood the request log
var quietPaths = []string{"/healthz", "/health/", "/metrics"}

// RequestLogger logs HTTP requests
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if isQuietPath(path) && len(c.Errors) == 0 {
			return
		}

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}

		reqLogger := logger.WithContext(c.Request.Context())

		if len(c.Errors) > 0 {
			reqLogger.Error("Request completed with errors", append(fields, zap.String("errors", c.Errors.String()))...)
		} else {
			reqLogger.Info("Request completed", fields...)
		}
	}
}

func isQuietPath(path string) bool {
	for _, p := range quietPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}
