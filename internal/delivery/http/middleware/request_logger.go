package middleware

import (
	"time"

	"alumni-prep-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}

		switch {
		case status >= 500:
			logger.Log.Errorw("Request completed", fields...)
		case status >= 400:
			logger.Log.Warnw("Request completed", fields...)
		default:
			logger.Log.Infow("Request completed", fields...)
		}
	}
}
