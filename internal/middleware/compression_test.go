package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(cm *Compression) *gin.Engine {
	gin.SetMode(gin.TestMode)

	large := strings.Repeat("partido ", 512)
	r := gin.New()
	r.Use(cm.Handler())
	r.GET("/large", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"text": large})
	})
	r.GET("/small", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/binary", func(c *gin.Context) {
		c.Data(http.StatusOK, "image/png", bytes.Repeat([]byte{0x89}, 4096))
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, large)
	})
	r.GET("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path string, acceptGzip bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if acceptGzip {
		req.Header.Set("Accept-Encoding", "gzip, deflate")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCompression_GzipsLargeJSON(t *testing.T) {
	cm := NewCompression(DefaultCompressionConfig())
	r := newTestRouter(cm)

	plain := get(r, "/large", false)
	require.Equal(t, http.StatusOK, plain.Code)
	assert.Empty(t, plain.Header().Get("Content-Encoding"))

	w := get(r, "/large", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Header().Get("Vary"), "Accept-Encoding")
	assert.Less(t, w.Body.Len(), plain.Body.Len())

	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, plain.Body.String(), string(body))

	stats := cm.GetStats()
	assert.Equal(t, int64(1), stats["compressed_responses"])
	assert.Equal(t, int64(1), stats["total_responses"])
}

func TestCompression_Skips(t *testing.T) {
	cm := NewCompression(DefaultCompressionConfig())
	r := newTestRouter(cm)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"below min size", "/small", http.StatusOK},
		{"not compressible", "/binary", http.StatusOK},
		{"excluded path", "/metrics", http.StatusOK},
		{"no body", "/empty", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.path, true)
			assert.Equal(t, tt.code, w.Code)
			assert.Empty(t, w.Header().Get("Content-Encoding"))
		})
	}
}

func TestNewCompression_InvalidLevel(t *testing.T) {
	cfg := DefaultCompressionConfig()
	cfg.Level = 42
	cm := NewCompression(cfg)
	assert.Equal(t, gzip.DefaultCompression, cm.config.Level)

	w := get(newTestRouter(cm), "/large", true)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
