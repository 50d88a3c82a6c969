package monitoring

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	logger.CacheLogger("get", "abc", true, 1)
	assert.Empty(t, buf.String(), "debug output below the configured level")

	logger.SetLevel(slog.LevelDebug)
	logger.CacheLogger("get", "0123456789abcdef", true, 1)
	assert.Contains(t, buf.String(), `"key_hash":"01234567..."`)
	assert.Contains(t, buf.String(), `"timestamp":`)

	buf.Reset()
	logger.QuizLogger("started", "s-1", "questions", 0, 10)
	assert.Contains(t, buf.String(), `"session_id":"s-1"`)
	assert.Contains(t, buf.String(), `"total":10`)
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("GET", "/api/v1/parties", 200, 10*time.Millisecond)
	m.ObserveRequest("POST", "/api/v1/affinity/score", 400, time.Millisecond)
	m.IncrementSessionStarted()
	m.RecordAnswer("agree")
	m.RecordAnswer("agree")
	m.RecordCompletion("partido-verde")
	m.RecordCompletion("")
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementRateLimitBlock("memory")
	m.SetActiveSessions(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/parties", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.answers.WithLabelValues("agree")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.quizzesCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bestMatches.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitBlocks.WithLabelValues("memory")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.activeSessions))

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, 50.0, stats["error_rate_percent"])
	assert.Equal(t, 50.0, stats["cache_hit_rate_percent"])
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.IncrementSessionStarted()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "affinity_quiz_sessions_started_total 1")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)
	m := NewMetrics()

	router := gin.New()
	router.Use(MonitoringMiddleware(m, logger))
	router.GET("/api/v1/parties/:slug", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parties/ghost", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/parties/:slug", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, strings.Count(buf.String(), `"msg":"HTTP Request"`))
}

func TestSecurityMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	router := gin.New()
	router.Use(SecurityMonitoringMiddleware(logger))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, buf.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "suspicious_user_agent")
}
