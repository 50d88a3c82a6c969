// Package middleware holds response middleware shared by every route.
package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize       int      // first write smaller than this is sent as is
	Level         int      // gzip level
	ContentTypes  []string // compressible content type prefixes
	ExcludedPaths []string // path prefixes never compressed
}

// DefaultCompressionConfig returns the default compression configuration.
// /metrics is excluded since promhttp negotiates its own encoding.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"text/css",
			"text/javascript",
			"application/javascript",
		},
		ExcludedPaths: []string{"/metrics"},
	}
}

// Compression gzips responses for clients that accept it
type Compression struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompression creates the middleware. An invalid level falls back to
// the gzip default.
func NewCompression(config CompressionConfig) *Compression {
	if _, err := gzip.NewWriterLevel(io.Discard, config.Level); err != nil {
		config.Level = gzip.DefaultCompression
	}

	c := &Compression{
		config: config,
		stats:  &CompressionStats{},
	}
	c.pool.New = func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, c.config.Level)
		return gz
	}
	return c
}

// Handler returns the gin middleware
func (cm *Compression) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cm.applies(c.Request) {
			c.Next()
			return
		}

		gzw := &gzipResponseWriter{ResponseWriter: c.Writer, cm: cm}
		c.Writer = gzw
		defer func() {
			gzw.finish()
			c.Writer = gzw.ResponseWriter
		}()

		c.Next()
	}
}

// GetStats returns compression statistics
func (cm *Compression) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}

func (cm *Compression) applies(r *http.Request) bool {
	if r.Method == http.MethodHead || r.Header.Get("Upgrade") != "" {
		return false
	}
	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		return false
	}
	for _, prefix := range cm.config.ExcludedPaths {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}

func (cm *Compression) compressible(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.HasPrefix(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipResponseWriter decides on the first write whether the body is
// compressed, based on the response content type and size
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm *Compression

	decided  bool
	gz       *gzip.Writer
	rawBytes int64
}

func (w *gzipResponseWriter) decide(first []byte) {
	w.decided = true

	h := w.Header()
	if h.Get("Content-Encoding") != "" || len(first) < w.cm.config.MinSize || !w.cm.compressible(h.Get("Content-Type")) {
		return
	}
	switch w.Status() {
	case http.StatusNoContent, http.StatusNotModified, http.StatusPartialContent:
		return
	}

	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")
	h.Del("Content-Length")

	w.gz = w.cm.pool.Get().(*gzip.Writer)
	w.gz.Reset(w.ResponseWriter)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decide(data)
	}
	w.rawBytes += int64(len(data))
	if w.gz == nil {
		return w.ResponseWriter.Write(data)
	}
	return w.gz.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// WriteHeaderNow sends headers untouched when nothing was written yet
func (w *gzipResponseWriter) WriteHeaderNow() {
	w.decided = true
	w.ResponseWriter.WriteHeaderNow()
}

// Written reports true once the body started, even while gzip buffers it
func (w *gzipResponseWriter) Written() bool {
	return w.decided || w.ResponseWriter.Written()
}

func (w *gzipResponseWriter) Flush() {
	if w.gz != nil {
		_ = w.gz.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *gzipResponseWriter) finish() {
	if w.gz == nil {
		if w.rawBytes > 0 {
			w.cm.stats.record(w.rawBytes, w.rawBytes, false)
		}
		return
	}

	_ = w.gz.Close()
	w.gz.Reset(io.Discard)
	w.cm.pool.Put(w.gz)
	w.gz = nil

	w.cm.stats.record(w.rawBytes, int64(w.ResponseWriter.Size()), true)
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	mu                 sync.Mutex
	TotalResponses     int64
	CompressedResponses int64
	TotalBytes         int64
	CompressedBytes    int64
	OriginalBytes      int64
}

func (cs *CompressionStats) record(original, sent int64, compressed bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.TotalResponses++
	cs.TotalBytes += sent
	if compressed {
		cs.CompressedResponses++
		cs.OriginalBytes += original
		cs.CompressedBytes += sent
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	ratio := float64(0)
	if cs.OriginalBytes > 0 {
		ratio = float64(cs.CompressedBytes) / float64(cs.OriginalBytes)
	}

	return map[string]interface{}{
		"total_responses":      cs.TotalResponses,
		"compressed_responses": cs.CompressedResponses,
		"bytes_sent":           cs.TotalBytes,
		"compression_ratio":    ratio,
	}
}
