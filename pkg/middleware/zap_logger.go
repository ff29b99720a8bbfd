package middleware

import (
	"time"

	"reservewatch/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinZapLogger logs every request through the process logger. Health probes
// from supervisors are not logged.
func GinZapLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if path == "/health" || path == "/favicon.ico" {
			return
		}

		fields := []zap.Field{
			zap.String("request_id", requestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("response_size", c.Writer.Size()),
		}
		if c.Request.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", c.Request.URL.RawQuery))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("Status request failed", fields...)
		case status >= 400:
			logger.Warn("Client request error", fields...)
		default:
			logger.Debug("HTTP request completed", fields...)
		}
	}
}
