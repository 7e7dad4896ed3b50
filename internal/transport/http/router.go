package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/pkg/logger"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

// RouteRegistrar mounts a handler's routes on the versioned API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterConfig controls the engine-wide middleware.
type RouterConfig struct {
	ServiceName string
	Tracing     bool
	Debug       bool
}

// NewRouter builds the gin engine with logging, recovery, /healthz,
// /metrics and every registrar under /api/v1.
func NewRouter(cfg RouterConfig, log *zap.Logger, m *metrics.Registry, registrars ...RouteRegistrar) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	SetupValidator()

	engine := gin.New()
	engine.Use(logger.Recovery(log))
	if cfg.Tracing {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}
	engine.Use(logger.GinMiddleware(log))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := engine.Group("/api/v1")
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}

	engine.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	return engine
}
