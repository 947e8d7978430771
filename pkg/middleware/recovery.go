package middleware

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/scamwatch/pkg/common"
	"github.com/richxcame/scamwatch/pkg/logger"
	"go.uber.org/zap"
)

// Recovery middleware recovers from panics and forwards them to Sentry when a hub is attached
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithContext(c.Request.Context()).Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.Stack("stack"),
				)

				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.RecoverWithContext(c.Request.Context(), err)
				}

				common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
