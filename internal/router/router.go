package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blisstech/pharmacy-api/internal/config"
	"github.com/blisstech/pharmacy-api/internal/handler/health"
	"github.com/blisstech/pharmacy-api/internal/middleware"
	"github.com/blisstech/pharmacy-api/pkg/metrics"
)

// Handler registers its routes on the authenticated API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine *gin.Engine
}

// New assembles the engine. Everything under /api/v1 requires a valid
// token except login; health and metrics stay open for probes.
func New(
	auth *middleware.AuthMiddleware,
	authH Handler,
	healthH *health.Handler,
	rateLimitCfg config.RateLimitConfig,
	m *metrics.Metrics,
	protected ...Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.CORS())
	engine.Use(middleware.Metrics(m))
	if rateLimitCfg.Enabled {
		engine.Use(middleware.NewRateLimiter(rateLimitCfg).RateLimit())
	}

	healthH.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")
	authH.RegisterRoutes(v1)

	authed := v1.Group("")
	authed.Use(auth.Authenticate())
	for _, h := range protected {
		h.RegisterRoutes(authed)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
