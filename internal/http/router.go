// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, voter identity, logging/redaction, panic
// recovery, compression, metrics, CORS, security headers, idempotency, and
// rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → identity → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/cuentos-backend/docs"
	"github.com/tbourn/cuentos-backend/internal/config"
	"github.com/tbourn/cuentos-backend/internal/domain"
	"github.com/tbourn/cuentos-backend/internal/http/handlers"
	"github.com/tbourn/cuentos-backend/internal/http/middleware"
	"github.com/tbourn/cuentos-backend/internal/identity"
	"github.com/tbourn/cuentos-backend/internal/reaction"
	"github.com/tbourn/cuentos-backend/internal/repo"
	"github.com/tbourn/cuentos-backend/internal/services"
)

// storyRepoShim adapts the repository free functions to the
// services.StoryRepo interface expected by the StoryService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type storyRepoShim struct{}

// CreateStory proxies repo.CreateStory.
func (storyRepoShim) CreateStory(ctx context.Context, db *gorm.DB, category domain.Category, content string) (*domain.Story, error) {
	return repo.CreateStory(ctx, db, category, content)
}

// GetStory proxies repo.GetStory.
func (storyRepoShim) GetStory(ctx context.Context, db *gorm.DB, id string) (*domain.Story, error) {
	return repo.GetStory(ctx, db, id)
}

// ListStories proxies repo.ListStories.
func (storyRepoShim) ListStories(ctx context.Context, db *gorm.DB, category domain.Category, sort domain.SortOrder, limit int) ([]domain.Story, error) {
	return repo.ListStories(ctx, db, category, sort, limit)
}

// StoriesStats proxies repo.StoriesStats (ETag support).
func (storyRepoShim) StoriesStats(ctx context.Context, db *gorm.DB, category domain.Category) (int64, *time.Time, error) {
	return repo.StoriesStats(ctx, db, category)
}

// idemRepoShim adapts the idempotency free functions to
// services.IdempotencyRepo.
type idemRepoShim struct{}

// GetIdempotency proxies repo.GetIdempotency.
func (idemRepoShim) GetIdempotency(ctx context.Context, db *gorm.DB, voterID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, voterID, scope, key, now)
}

// CreateIdempotency proxies repo.CreateIdempotency.
func (idemRepoShim) CreateIdempotency(ctx context.Context, db *gorm.DB, voterID, scope, key, storyID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, voterID, scope, key, storyID, status, ttl)
}

// corsAllowHeaders are the request headers browsers may send cross-origin.
var corsAllowHeaders = []string{
	"Origin", "Content-Type", "Accept", "Authorization",
	identity.HeaderFingerprint,
	identity.HeaderTimezoneOffset,
	identity.HeaderColorDepth,
	identity.HeaderScreenSize,
	identity.HeaderHardwareConcurrency,
	middleware.HeaderIdempotencyKey,
	"If-None-Match",
}

// corsExposeHeaders are the response headers readable by browser clients.
var corsExposeHeaders = []string{
	"X-Request-ID", "Content-Length", "ETag", handlers.HeaderIdempotentReplayed,
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the public API under cfg.APIBasePath.
//
// guard serializes reaction taps per (story, voter); pass a
// reaction.RedisGuard to share it across replicas. A nil guard falls back to
// an in-process one.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: resolve the anonymous voter
//  4. ContextLogger + RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Gzip and body size limiter
//  7. Metrics
//  8. CORS (preflights end here)
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per voter/IP, bypass on replay)
//  11. Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, guard reaction.Guard, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Anonymous voter identity
	r.Use(middleware.Identity())

	// 4) Request-scoped logger and access log with redaction
	r.Use(middleware.ContextLogger())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders:  []string{"X-API-Key"},
		SkipPatterns: !cfg.LogRedact,
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Response compression and global body size limit (1 MiB)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))
	r.Use(limitBody(1 << 20))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (safe defaults: allow all if none configured). Runs before
	// the limiter so preflights are answered without spending tokens and 429s
	// stay readable cross-origin.
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsAllowHeaders,
			ExposeHeaders:    corsExposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsAllowHeaders,
			ExposeHeaders:    corsExposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 9) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, voterID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, voterID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 10) Token-bucket rate limiter per voter/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByVoterOrIP())
	r.Use(rl.Handler())

	// Security headers (HSTS only when enabled and request is HTTPS).
	// Identity is derived from request headers, so caches must vary on them.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:     cfg.Security.EnableHSTS,
		HSTSMaxAge:     cfg.Security.HSTSMaxAge,
		NoStore:        false,
		EnablePolicy:   true,
		VaryOnIdentity: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/guard
	storySvc := services.NewStoryService(db, storyRepoShim{}, idemRepoShim{})
	if cfg.Story.PageSize > 0 {
		storySvc.PageSize = cfg.Story.PageSize
	}
	if cfg.Story.MinChars > 0 {
		storySvc.MinChars = cfg.Story.MinChars
	}
	if cfg.Story.MaxChars > 0 {
		storySvc.MaxChars = cfg.Story.MaxChars
	}
	if cfg.IdempotencyTTL > 0 {
		storySvc.IdemTTL = cfg.IdempotencyTTL
	}
	if guard == nil {
		guard = reaction.NewLocalGuard()
	}
	reactionSvc := services.NewReactionService(storySvc, &services.LedgerService{DB: db}, guard, cfg.Reaction.AtomicSwitch)
	h := handlers.New(storySvc, reactionSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Stories
		api.GET("/stories", h.ListStories)
		api.POST("/stories", h.CreateStory)

		// Reactions
		api.GET("/stories/:id/reaction", h.GetReaction)
		api.POST("/stories/:id/reactions", h.ToggleReaction)

		// Identity and catalogs
		api.GET("/identity", h.GetIdentity)
		api.GET("/meta", handlers.Meta(handlers.Limits{
			MinChars: storySvc.MinChars,
			MaxChars: storySvc.MaxChars,
			PageSize: storySvc.PageSize,
		}))
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
