package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pulsechain-backend/internal/documents"
	"pulsechain-backend/internal/services/health"
	"pulsechain-backend/internal/shared/cache"
	"pulsechain-backend/internal/shared/config"
	"pulsechain-backend/internal/shared/metrics"
	"pulsechain-backend/internal/shared/server/middleware"
	"pulsechain-backend/internal/shared/server/respond"
)

// RouterDeps carries the wired dependencies the router needs.
type RouterDeps struct {
	Config    config.Config
	Documents *documents.Handler
	Health    *health.Service
	// Sessions caches verified token identities for the auth middleware.
	Sessions cache.Coordinator
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(rateLimits()),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := gin.H{"ok": true}
		if deps.Health != nil {
			status = deps.Health.Status(c.Request.Context())
		}
		if ok, _ := status["ok"].(bool); !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.JSON(c, http.StatusOK, status)
	})
	api.GET("/metrics", metrics.Handler())

	protected := api.Group("")
	protected.Use(middleware.Auth([]byte(deps.Config.JWTSecret), deps.Sessions, deps.Config.CacheAuthTTL))
	deps.Documents.RegisterRoutes(protected)

	return r
}

// Uploads fan out into OCR work, so they get a tighter budget than the
// rest of the API. Rates are tokens per second over a 15 minute window.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/documents/upload") {
				return "UPLOADS"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 200.0 / 900.0, Burst: 200},
			"UPLOADS": {Rate: 30.0 / 900.0, Burst: 30},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
