// Package http serves the scheduler daemon's operational endpoints:
// Prometheus metrics and health probes.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"housekeeper/internal/infrastructure/http/handlers"
	"housekeeper/internal/infrastructure/http/middleware"
	"housekeeper/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Database is pinged by the readiness probe
	Database handlers.Database

	// Gatherer backs /metrics (prometheus.DefaultGatherer when nil)
	Gatherer prometheus.Gatherer

	// Logger for request logging
	Logger *logger.Logger

	// Version is reported by /health/info
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.Logger(cfg.Logger))

	healthHandler := handlers.NewHealthHandler(cfg.Database, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	return router
}
