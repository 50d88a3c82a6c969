package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
	"github.com/ZanzyTHEbar/election-affinity/internal/api"
	"github.com/ZanzyTHEbar/election-affinity/internal/cache"
	"github.com/ZanzyTHEbar/election-affinity/internal/config"
	"github.com/ZanzyTHEbar/election-affinity/internal/content"
	apperrors "github.com/ZanzyTHEbar/election-affinity/internal/errors"
	"github.com/ZanzyTHEbar/election-affinity/internal/frontend"
	"github.com/ZanzyTHEbar/election-affinity/internal/monitoring"
	"github.com/ZanzyTHEbar/election-affinity/internal/ratelimit"
	"github.com/ZanzyTHEbar/election-affinity/internal/sessions"
	"github.com/ZanzyTHEbar/election-affinity/internal/share"
)

type namedCloser struct {
	name   string
	closer io.Closer
}

// application is the assembled service: every component built from the
// configuration plus the HTTP handler on top of them.
type application struct {
	handler http.Handler
	closers []namedCloser
}

func (a *application) track(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, closer: c})
}

// Close releases resources in reverse order of creation.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		apperrors.SafeClose(a.closers[i].closer, a.closers[i].name)
	}
	a.closers = nil
}

func contentSource(dataDir string) string {
	if dataDir == "" {
		return "embedded"
	}
	return dataDir
}

func newApplication(ctx context.Context, cfg *config.Config, logger *monitoring.Logger) (_ *application, err error) {
	app := &application{}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	dataset, err := content.NewStore(cfg.Content.DataDir).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	counts := dataset.Counts()
	logger.ContentLogger(contentSource(cfg.Content.DataDir), counts.Questions, counts.Parties, counts.Candidates, counts.Timeline, counts.Lessons)

	metrics := monitoring.NewMetrics()
	engine := affinity.NewEngine(dataset.Questions, dataset.Parties, cfg.Quiz.MaxQuestions, cfg.Quiz.RunnersUp)

	store := sessions.NewStore(engine, sessions.Config{
		TTL:         cfg.Quiz.SessionTTL,
		MaxSessions: cfg.Quiz.MaxSessions,
		OnChange:    metrics.SetActiveSessions,
	})
	app.track("session store", store)

	signer, err := share.NewSigner(cfg.Share.Secret, cfg.Share.Issuer, cfg.Share.TTL)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to create share signer")
	}

	var responseCache *cache.Cache
	if cfg.Cache.Enabled {
		responseCache = cache.NewCache(cfg.Cache.TTL, cfg.Cache.TTL)
		app.track("response cache", responseCache)
	}

	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
	if err != nil {
		// the limiter falls back to memory
		slog.Warn("Redis unavailable, rate limiting in memory", "addr", cfg.RateLimit.RedisAddr, "error", err)
	}
	app.track("redis", redisClient)

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	}, metrics)
	app.track("rate limiter", limiter)

	distFS, err := frontend.GetDistFS()
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to open embedded frontend")
	}
	tmpl, err := frontend.LoadIndexTemplate(distFS)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to load index template")
	}

	srv, err := api.NewServer(api.Deps{
		Config:        cfg,
		Dataset:       dataset,
		Engine:        engine,
		Sessions:      store,
		Signer:        signer,
		Cache:         responseCache,
		Limiter:       limiter,
		Redis:         redisClient,
		Metrics:       metrics,
		Logger:        logger,
		DistFS:        distFS,
		IndexTemplate: tmpl,
	})
	if err != nil {
		return nil, err
	}

	router, err := srv.Router()
	if err != nil {
		return nil, err
	}
	app.handler = router

	logger.SystemLogger("application_ready", fmt.Sprintf("%d questions, %d parties", counts.Questions, counts.Parties))
	return app, nil
}
