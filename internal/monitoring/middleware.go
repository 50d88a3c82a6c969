package monitoring

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// maxQuizBody is the largest body a legitimate quiz or scoring request needs
const maxQuizBody = 64 << 10

// MonitoringMiddleware records request metrics and logs every request
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		// unmatched paths share one label
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.ObserveRequest(c.Request.Method, route, status, duration)
		logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.GetHeader("User-Agent"), status, duration)

		if duration > 5*time.Second {
			logger.Warn("Slow request", "path", c.Request.URL.Path, "duration_ms", duration.Milliseconds())
		}
	}
}

// SecurityMonitoringMiddleware logs requests that look like scanning or abuse.
// It never blocks.
func SecurityMonitoringMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.GetHeader("User-Agent")
		details := make(map[string]interface{})

		if containsSuspiciousUserAgent(userAgent) {
			details["type"] = "suspicious_user_agent"
		}

		if c.Request.Method == "POST" && strings.HasPrefix(c.Request.URL.Path, "/api/") && c.Request.ContentLength > maxQuizBody {
			details["type"] = "large_request_body"
			details["size_bytes"] = c.Request.ContentLength
		}

		if len(details) > 0 {
			details["path"] = c.Request.URL.Path
			logger.SecurityLogger("suspicious_activity_detected", c.ClientIP(), userAgent, details)
		}

		c.Next()
	}
}

var suspiciousAgents = []string{
	"sqlmap",
	"nmap",
	"masscan",
	"zgrab",
	"dirbuster",
	"gobuster",
	"nikto",
	"nuclei",
}

func containsSuspiciousUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, agent := range suspiciousAgents {
		if strings.Contains(ua, agent) {
			return true
		}
	}
	return false
}
