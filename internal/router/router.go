package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/user-admin/internal/config"
	"github.com/jwalitptl/user-admin/internal/handler/health"
	promHandler "github.com/jwalitptl/user-admin/internal/handler/prometheus"
	"github.com/jwalitptl/user-admin/internal/middleware"
	"github.com/jwalitptl/user-admin/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine *gin.Engine
}

type RouterConfig struct {
	Server     config.ServerConfig
	RateLimit  config.RateLimitConfig
	Monitoring config.MonitoringConfig
	Metrics    *metrics.Metrics
	// Gatherer serves the metrics endpoint; nil disables it
	Gatherer prometheus.Gatherer
	Health   *health.Handler
}

// NewRouter builds the engine with the middleware chain and mounts every
// handler under /api
func NewRouter(cfg RouterConfig, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	if cfg.Metrics != nil {
		engine.Use(middleware.Metrics(cfg.Metrics))
	}
	engine.Use(middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.Server.RequestTimeout}))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.AllowedOrigins
	}
	engine.Use(middleware.CORS(cors))
	engine.Use(middleware.SecurityHeaders(middleware.DefaultSecurityConfig()))

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if cfg.Server.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = cfg.Server.MaxBodyBytes
	}
	engine.Use(middleware.SizeLimit(sizeLimit))

	r := &Router{engine: engine}

	// probes and scrapes are not rate limited
	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(engine)
	}
	if cfg.Gatherer != nil && cfg.Monitoring.PrometheusEnabled {
		promHandler.New(cfg.Monitoring.MetricsPath, cfg.Gatherer).RegisterRoutes(engine)
	}

	api := engine.Group("/api")
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
			TTL:   cfg.RateLimit.ClientTTL,
		})
		api.Use(limiter.RateLimit())
	}
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
