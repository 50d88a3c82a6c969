// Package security holds the HTTP hardening middleware of the service.
package security

import (
	"context"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/election-affinity/internal/errors"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	EnableHSTS     bool
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		RequestTimeout: 15 * time.Second,
		MaxBodyBytes:   64 << 10,
	}
}

// SecurityMiddleware bundles request validation middleware
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{config: config}
}

var identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,79}$`)

// ValidIdentifier reports whether s is a well formed slug, content id or
// session id.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// ValidateContentType requires JSON for requests that carry a body
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		c.Next()
		return
	}

	if c.Request.ContentLength == 0 {
		c.Next()
		return
	}

	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil || mediaType != "application/json" {
		appErr := apperrors.NewUnsupportedMediaTypeError(c.GetHeader("Content-Type"))
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	c.Next()
}

// LimitBody caps the size of request bodies
func (sm *SecurityMiddleware) LimitBody(c *gin.Context) {
	if c.Request.Body != nil && sm.config.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	}
	c.Next()
}

// RequestTimeout bounds the request context
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}
