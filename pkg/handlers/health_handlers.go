package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const ServiceName = "reservewatch"

// HealthCheck reports liveness. It is served outside /api/v1.
func (h *HandlerService) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   ServiceName,
		"version":   h.version,
		"timestamp": h.now().UTC(),
		"uptime":    h.now().Sub(h.startedAt).Round(time.Second).String(),
	})
}

// GetStatus returns the poll loop's latest snapshot.
func (h *HandlerService) GetStatus(c *gin.Context) {
	if h.status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   true,
			"message": "monitor not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service": ServiceName,
		"version": h.version,
		"monitor": h.status.Snapshot(),
	})
}
