package monitoring

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "affinity"

// Metrics holds the prometheus collectors of the service on a private
// registry, plus a few counters summarized by the health endpoint.
type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	sessionsStarted  prometheus.Counter
	quizzesCompleted prometheus.Counter
	answers          *prometheus.CounterVec
	bestMatches      *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	rateLimitBlocks  *prometheus.CounterVec
	activeSessions   prometheus.Gauge

	requestCount int64
	errorCount   int64
	cacheHits    int64
	cacheMisses  int64
	StartTime    time.Time
}

// NewMetrics creates and registers every collector
func NewMetrics() *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		StartTime: time.Now(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_sessions_started_total",
			Help:      "Quiz sessions moved from intro to questions",
		}),
		quizzesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_completed_total",
			Help:      "Quizzes that reached the results phase or were scored statelessly",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_answers_total",
			Help:      "Recorded answers by value",
		}, []string{"answer"}),
		bestMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "best_match_total",
			Help:      "Best matching party of completed quizzes",
		}, []string{"party"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result",
		}, []string{"result"}),
		rateLimitBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_blocks_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"backend"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quiz_active_sessions",
			Help:      "Quiz sessions currently held in memory",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.sessionsStarted,
		m.quizzesCompleted,
		m.answers,
		m.bestMatches,
		m.cacheLookups,
		m.rateLimitBlocks,
		m.activeSessions,
	)

	return m
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	atomic.AddInt64(&m.requestCount, 1)
	if status >= 400 {
		atomic.AddInt64(&m.errorCount, 1)
	}

	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncrementSessionStarted counts a quiz start
func (m *Metrics) IncrementSessionStarted() {
	m.sessionsStarted.Inc()
}

// RecordAnswer counts one answer by its name
func (m *Metrics) RecordAnswer(answer string) {
	m.answers.WithLabelValues(answer).Inc()
}

// RecordCompletion counts a finished quiz and its best match. An empty
// party means no party could be ranked.
func (m *Metrics) RecordCompletion(party string) {
	m.quizzesCompleted.Inc()
	if party == "" {
		party = "none"
	}
	m.bestMatches.WithLabelValues(party).Inc()
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.cacheHits, 1)
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.cacheMisses, 1)
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// IncrementRateLimitBlock counts a rejected request per limiter backend
func (m *Metrics) IncrementRateLimitBlock(backend string) {
	m.rateLimitBlocks.WithLabelValues(backend).Inc()
}

// SetActiveSessions reports the current session count
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// GetStats returns a summary for the health endpoint
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.requestCount)
	errors := atomic.LoadInt64(&m.errorCount)
	hits := atomic.LoadInt64(&m.cacheHits)
	misses := atomic.LoadInt64(&m.cacheMisses)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = float64(hits) / float64(hits+misses) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     errorRate,
		"cache_hits":             hits,
		"cache_misses":           misses,
		"cache_hit_rate_percent": cacheHitRate,
		"start_time":             m.StartTime.Format(time.RFC3339),
	}
}
