package cache

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/election-affinity/internal/monitoring"
)

func TestCache_SetGetExpire(t *testing.T) {
	c := NewCache(50*time.Millisecond, time.Hour)
	defer c.Close()

	c.Set("k", []byte("v"), "text/plain")
	item, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), item.Data)
	assert.Equal(t, 1, c.Size())

	time.Sleep(80 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 1, stats["expired_items"])

	c.DeleteExpired()
	assert.Equal(t, 0, c.Size())
}

func TestCache_DeleteClear(t *testing.T) {
	c := NewCache(time.Minute, time.Hour)
	defer c.Close()

	c.Set("a", []byte("1"), "")
	c.Set("b", []byte("2"), "")
	c.Delete("a")
	assert.Equal(t, 1, c.Size())
	c.Clear()
	assert.Equal(t, 0, c.Size())

	// closing twice is harmless
	assert.NoError(t, c.Close())
}

func TestKey(t *testing.T) {
	a := Key("POST", "/score", []byte(`{"answers":[]}`))
	assert.Equal(t, a, Key("POST", "/score", []byte(`{"answers":[]}`)))
	assert.NotEqual(t, a, Key("POST", "/score", []byte(`{"answers":[1]}`)))
	assert.NotEqual(t, a, Key("POST", "/other", []byte(`{"answers":[]}`)))
	assert.Len(t, a, 64)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := NewCache(time.Minute, time.Hour)
	defer c.Close()
	metrics := monitoring.NewMetrics()
	logger := monitoring.NewLoggerWithWriter(io.Discard, slog.LevelInfo)

	calls := 0
	router := gin.New()
	router.POST("/score", c.Middleware(metrics, logger), func(ctx *gin.Context) {
		calls++
		body, _ := io.ReadAll(ctx.Request.Body)
		if bytes.Contains(body, []byte("bad")) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "bad"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"echo": string(body)})
	})

	do := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	first := do(`{"a":1}`)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(`{"a":1}`)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, 1, calls, "handler body was read through the middleware once")

	// errors are never cached
	do(`{"bad":1}`)
	do(`{"bad":1}`)
	assert.Equal(t, 3, calls)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(3), stats["cache_misses"])
}

func TestMiddleware_SkipsAbortedRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := NewCache(time.Minute, time.Hour)
	defer c.Close()
	metrics := monitoring.NewMetrics()
	logger := monitoring.NewLoggerWithWriter(io.Discard, slog.LevelInfo)

	router := gin.New()
	router.POST("/score", c.Middleware(metrics, logger), func(ctx *gin.Context) {
		_ = ctx.Error(errors.New("rejected"))
		ctx.Abort()
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewBufferString(`{}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	}
	assert.Equal(t, 0, c.Size())
}
