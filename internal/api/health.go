package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// @Summary Health check
// @Description Reports content counts, live sessions and the rate limiter backend.
// @Tags system
// @Produce json
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	services := gin.H{
		"sessions": s.sessions.Len(),
	}
	status := "ok"

	switch {
	case s.redis.IsEnabled():
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := s.redis.HealthCheck(ctx); err != nil {
			// the limiter keeps working in memory
			status = "degraded"
			services["redis"] = "down"
		} else {
			services["redis"] = "up"
		}
	default:
		services["redis"] = "disabled"
	}

	if s.cache != nil {
		services["cache"] = s.cache.Stats()
	}
	if s.compress != nil {
		services["compression"] = s.compress.GetStats()
	}
	if s.limiter != nil {
		services["rate_limit"] = s.limiter.GetStats()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"timestamp":      time.Now().Format(time.RFC3339),
		"uptime_seconds": time.Since(s.startedAt).Seconds(),
		"content":        s.dataset.Counts(),
		"services":       services,
		"metrics":        s.metrics.GetStats(),
	})
}
