// Package ratelimit limits requests per client IP, in Redis when available
// and in memory otherwise.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"

	"github.com/ZanzyTHEbar/election-affinity/internal/monitoring"
	"github.com/ZanzyTHEbar/election-affinity/internal/resilience"
)

const (
	backendRedis  = "redis"
	backendMemory = "memory"

	// fallback limiters idle longer than this are dropped
	idleLimiterTTL = 10 * time.Minute
)

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	Burst             int
	CleanupInterval   time.Duration
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 120,
		Burst:             20,
		CleanupInterval:   time.Minute,
	}
}

// Rate is a limit of Limit requests per Period with Burst capacity
type Rate struct {
	Limit  int
	Burst  int
	Period time.Duration
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	Backend    string
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter checks limits in Redis and falls back to in-memory token
// buckets when Redis is disabled or failing
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	breaker      *resilience.CircuitBreaker
	config       Config
	metrics      *monitoring.Metrics

	mu       sync.Mutex
	fallback map[string]*fallbackEntry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter. redisClient may be nil.
func NewRateLimiter(redisClient *RedisClient, config Config, metrics *monitoring.Metrics) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}

	rl := &RateLimiter{
		redisClient: redisClient,
		breaker:     resilience.NewCircuitBreaker(resilience.DefaultConfig()),
		config:      config,
		metrics:     metrics,
		fallback:    make(map[string]*fallbackEntry),
		stop:        make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	} else {
		slog.Info("Using in-memory rate limiting")
	}

	go rl.cleanup()

	return rl
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() error {
	rl.stopOnce.Do(func() { close(rl.stop) })
	return nil
}

// IPRate is the per-IP limit derived from the configuration
func (rl *RateLimiter) IPRate() Rate {
	return Rate{
		Limit:  rl.config.RequestsPerMinute,
		Burst:  rl.config.Burst,
		Period: time.Minute,
	}
}

// AllowIP checks the per-minute limit of an IP address
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	return rl.Allow(ctx, fmt.Sprintf("ratelimit:ip:%s", ip), rl.IPRate())
}

// Allow checks a key against a rate
func (rl *RateLimiter) Allow(ctx context.Context, key string, r Rate) (*Result, error) {
	if r.Limit <= 0 || r.Period <= 0 {
		return nil, fmt.Errorf("invalid rate %d per %s", r.Limit, r.Period)
	}
	if r.Burst <= 0 {
		r.Burst = r.Limit
	}

	if rl.redisLimiter != nil {
		var result *Result
		err := rl.breaker.Call(func() error {
			var err error
			result, err = rl.allowRedis(ctx, key, r)
			return err
		})
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, resilience.ErrOpen) {
			slog.Warn("Redis rate limit check failed, using fallback", "key", key, "error", err)
		}
	}

	return rl.allowFallback(key, r), nil
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, r Rate) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   r.Limit,
		Burst:  r.Burst,
		Period: r.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: max(res.RetryAfter, 0),
		Backend:    backendRedis,
	}, nil
}

func (rl *RateLimiter) allowFallback(key string, r Rate) *Result {
	now := time.Now()

	rl.mu.Lock()
	entry, exists := rl.fallback[key]
	if !exists {
		rps := rate.Limit(float64(r.Limit) / r.Period.Seconds())
		entry = &fallbackEntry{limiter: rate.NewLimiter(rps, r.Burst)}
		rl.fallback[key] = entry
	}
	entry.lastSeen = now
	rl.mu.Unlock()

	limiter := entry.limiter
	result := &Result{
		Limit:   r.Limit,
		Backend: backendMemory,
	}

	result.Allowed = limiter.AllowN(now, 1)
	tokens := limiter.TokensAt(now)
	result.Remaining = max(int(tokens), 0)

	// time until the bucket is full again
	missing := float64(r.Burst) - tokens
	result.ResetAt = now.Add(time.Duration(missing / float64(limiter.Limit()) * float64(time.Second)))

	if !result.Allowed {
		// time until one token is available
		result.RetryAfter = time.Duration((1 - tokens) / float64(limiter.Limit()) * float64(time.Second))
	}

	return result
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now())
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.fallback {
		if now.Sub(entry.lastSeen) > idleLimiterTTL {
			delete(rl.fallback, key)
		}
	}
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	fallbackCount := len(rl.fallback)
	rl.mu.Unlock()

	return map[string]interface{}{
		"redis_enabled":       rl.redisLimiter != nil,
		"redis_breaker":       rl.breaker.GetStats(),
		"fallback_limiters":   fallbackCount,
		"requests_per_minute": rl.config.RequestsPerMinute,
		"burst":               rl.config.Burst,
		"redis_pool":          rl.redisClient.GetPoolStats(),
	}
}
