// Package api wires the HTTP surface of the service onto gin.
package api

import (
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ZanzyTHEbar/election-affinity/docs"
	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
	"github.com/ZanzyTHEbar/election-affinity/internal/cache"
	"github.com/ZanzyTHEbar/election-affinity/internal/config"
	"github.com/ZanzyTHEbar/election-affinity/internal/content"
	apperrors "github.com/ZanzyTHEbar/election-affinity/internal/errors"
	"github.com/ZanzyTHEbar/election-affinity/internal/frontend"
	"github.com/ZanzyTHEbar/election-affinity/internal/middleware"
	"github.com/ZanzyTHEbar/election-affinity/internal/monitoring"
	"github.com/ZanzyTHEbar/election-affinity/internal/ratelimit"
	"github.com/ZanzyTHEbar/election-affinity/internal/security"
	"github.com/ZanzyTHEbar/election-affinity/internal/sessions"
	"github.com/ZanzyTHEbar/election-affinity/internal/share"
)

// Deps are the components the handlers are built from. Cache, Limiter,
// Redis, DistFS and IndexTemplate are optional.
type Deps struct {
	Config   *config.Config
	Dataset  *content.Dataset
	Engine   *affinity.Engine
	Sessions *sessions.Store
	Signer   *share.Signer
	Cache    *cache.Cache
	Limiter  *ratelimit.RateLimiter
	Redis    *ratelimit.RedisClient
	Metrics  *monitoring.Metrics
	Logger   *monitoring.Logger

	DistFS        fs.FS
	IndexTemplate *template.Template
}

// Server holds the handlers of the API.
type Server struct {
	cfg      *config.Config
	dataset  *content.Dataset
	engine   *affinity.Engine
	sessions *sessions.Store
	signer   *share.Signer
	cache    *cache.Cache
	limiter  *ratelimit.RateLimiter
	redis    *ratelimit.RedisClient
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
	compress *middleware.Compression

	distFS        fs.FS
	indexTemplate *template.Template
	startedAt     time.Time
}

// NewServer checks the required dependencies and builds a Server.
func NewServer(d Deps) (*Server, error) {
	var errs []error
	if d.Config == nil {
		errs = append(errs, errors.New("config is required"))
	}
	if d.Dataset == nil {
		errs = append(errs, errors.New("dataset is required"))
	}
	if d.Engine == nil {
		errs = append(errs, errors.New("engine is required"))
	}
	if d.Sessions == nil {
		errs = append(errs, errors.New("session store is required"))
	}
	if d.Signer == nil {
		errs = append(errs, errors.New("share signer is required"))
	}
	if d.Metrics == nil {
		errs = append(errs, errors.New("metrics are required"))
	}
	if d.Logger == nil {
		errs = append(errs, errors.New("logger is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	var compress *middleware.Compression
	if d.Config.Compress.Enabled {
		cc := middleware.DefaultCompressionConfig()
		cc.MinSize = d.Config.Compress.MinSize
		cc.Level = d.Config.Compress.Level
		compress = middleware.NewCompression(cc)
	}

	return &Server{
		cfg:           d.Config,
		compress:      compress,
		dataset:       d.Dataset,
		engine:        d.Engine,
		sessions:      d.Sessions,
		signer:        d.Signer,
		cache:         d.Cache,
		limiter:       d.Limiter,
		redis:         d.Redis,
		metrics:       d.Metrics,
		logger:        d.Logger,
		distFS:        d.DistFS,
		indexTemplate: d.IndexTemplate,
		startedAt:     time.Now(),
	}, nil
}

// Router builds the gin engine with the full middleware chain and routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()

	if err := r.SetTrustedProxies(s.cfg.Server.TrustedProxies); err != nil {
		return nil, apperrors.WrapError(err, "invalid trusted proxies")
	}

	r.Use(apperrors.RecoveryHandler())
	if s.compress != nil {
		r.Use(s.compress.Handler())
	}
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger))
	r.Use(apperrors.ErrorHandler())
	r.Use(security.SecurityHeadersMiddleware(s.cfg.Server.EnableHSTS))
	r.Use(cors.New(corsConfig(s.cfg.CORS.AllowedOrigins)))

	if s.limiter != nil {
		r.Use(s.limiter.IPRateLimitMiddleware())
	}

	secCfg := security.DefaultSecurityConfig()
	secCfg.RequestTimeout = s.cfg.Server.RequestTimeout
	secCfg.EnableHSTS = s.cfg.Server.EnableHSTS
	sm := security.NewSecurityMiddleware(secCfg)
	r.Use(sm.RequestTimeout)
	r.Use(sm.LimitBody)
	r.Use(sm.ValidateContentType)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/parties", s.listParties)
		v1.GET("/parties/:slug", s.getParty)
		v1.GET("/candidates", s.listCandidates)
		v1.GET("/candidates/:id", s.getCandidate)
		v1.GET("/timeline", s.timeline)
		v1.GET("/lessons", s.listLessons)
		v1.GET("/lessons/:slug", s.getLesson)

		quiz := v1.Group("/quiz")
		quiz.GET("/questions", s.selectQuestions)
		quiz.POST("/sessions", s.createSession)
		quiz.GET("/sessions/:id", s.getSession)
		quiz.DELETE("/sessions/:id", s.deleteSession)
		quiz.POST("/sessions/:id/answers", s.answerSession)
		quiz.POST("/sessions/:id/reset", s.resetSession)
		quiz.POST("/sessions/:id/start", s.startSession)

		if s.cache != nil {
			v1.POST("/affinity/score", s.cache.Middleware(s.metrics, s.logger), s.score)
		} else {
			v1.POST("/affinity/score", s.score)
		}
		v1.GET("/results/:token", s.sharedResult)
	}

	if s.distFS != nil && s.indexTemplate != nil {
		r.NoRoute(security.CSPMiddleware(), frontend.NewSPAHandler(s.distFS, s.indexTemplate))
	} else {
		r.NoRoute(func(c *gin.Context) {
			appErr := apperrors.NewNotFoundError("route", c.Request.URL.Path)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		})
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After", "X-Cache"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// fail attaches err to the context for ErrorHandler to render.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
