package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/services/health"
	"studyhub-backend/internal/shared/config"
	"studyhub-backend/internal/shared/metrics"
	"studyhub-backend/internal/shared/server/middleware"
	"studyhub-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes to the authenticated API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps are the collaborators the router needs.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	Health   *health.Service
	Handlers []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = deps.Config.Limits.MaxUploadBytes

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: middleware.GroupForRoute,
			Rules:    rateLimitRules(deps.Config),
		}),
	)
	registerMeRoutes(api)
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

func rateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	rps, burst := cfg.RateLimitRPS, cfg.RateLimitBurst
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return map[string]middleware.RateLimitRule{
		middleware.GroupDefault: {Rate: rps, Burst: burst},
		middleware.GroupUpload:  {Rate: rps / 5, Burst: max(1, burst/5)},
		middleware.GroupPolling: {Rate: rps * 2, Burst: burst * 2},
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
