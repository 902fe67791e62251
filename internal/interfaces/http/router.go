// Package http assembles the gin route tree and the HTTP server.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molscreen/internal/interfaces/http/handlers"
	"github.com/turtacn/molscreen/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.  Nil handlers leave their routes unregistered; nil infrastructure
// degrades to no-ops.
type RouterConfig struct {
	MoleculeHandler *handlers.MoleculeHandler
	SearchHandler   *handlers.SearchHandler
	HealthHandler   *handlers.HealthHandler

	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string
}

// NewRouter constructs the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Collector != nil {
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	api := r.Group("/api/v1")
	{
		if h := cfg.MoleculeHandler; h != nil {
			api.POST("/molecules", h.Create)
			api.POST("/molecules/batch", h.CreateBatch)
			api.GET("/molecules/stats", h.Stats)
			api.GET("/molecules/:id", h.Get)
			api.DELETE("/molecules/:id", h.Delete)
		}
		if h := cfg.SearchHandler; h != nil {
			api.POST("/search/substructure", h.Substructure)
			api.POST("/search/exact", h.Exact)
			api.POST("/search/count", h.Count)
		}
	}

	return r
}
