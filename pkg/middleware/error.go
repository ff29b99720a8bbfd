package middleware

import (
	"net/http"

	"reservewatch/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a JSON 500. The poll loop runs on its
// own goroutine and is never affected.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic in status handler",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("request_id", requestIDFrom(c)),
			zap.Stack("stack"),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      true,
			"message":    "Internal Server Error",
			"request_id": requestIDFrom(c),
		})
	})
}
