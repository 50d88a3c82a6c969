package security

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, hsts := range []bool{false, true} {
		router := gin.New()
		router.Use(SecurityHeadersMiddleware(hsts))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
		assert.Equal(t, hsts, w.Header().Get("Strict-Transport-Security") != "")
	}
}

func TestCSPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen []string
	router := gin.New()
	router.Use(CSPMiddleware())
	router.GET("/", func(c *gin.Context) {
		seen = append(seen, GetNonce(c))
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		csp := w.Header().Get("Content-Security-Policy")
		require.NotEmpty(t, csp)
		assert.Contains(t, csp, "'nonce-"+seen[i]+"'")
		assert.Contains(t, csp, "frame-ancestors 'none'")
	}

	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.NotEqual(t, seen[0], seen[1], "nonces are per request")
}

func TestGetNonce_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetNonce(c))
}

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"partido-verde", true},
		{"how-to-vote", true},
		{"6f1c2a4e-2b1d-4c8e-9a51-0f3b8a2d7c10", true},
		{"lucia_mendoza", true},
		{"", false},
		{"-leading-dash", false},
		{"Upper", false},
		{"../etc/passwd", false},
		{"a b", false},
		{strings.Repeat("a", 81), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidIdentifier(tt.in))
		})
	}
}

func TestValidateContentType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(DefaultSecurityConfig())
	router := gin.New()
	router.Use(sm.ValidateContentType)
	router.POST("/score", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/parties", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		contentType string
		want        int
	}{
		{"json", http.MethodPost, "/score", `{}`, "application/json", http.StatusOK},
		{"json with charset", http.MethodPost, "/score", `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form", http.MethodPost, "/score", `a=1`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing type", http.MethodPost, "/score", `{}`, "", http.StatusUnsupportedMediaType},
		{"empty body", http.MethodPost, "/score", ``, "", http.StatusOK},
		{"get ignored", http.MethodGet, "/parties", ``, "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(SecurityConfig{RequestTimeout: time.Second, MaxBodyBytes: 8})
	router := gin.New()
	router.Use(sm.LimitBody)
	router.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("much too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(SecurityConfig{RequestTimeout: 2 * time.Second})
	router := gin.New()
	router.Use(sm.RequestTimeout)

	var deadline time.Time
	var ok bool
	router.GET("/", func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
	assert.Equal(t, "2", w.Header().Get("X-Timeout"))
}
