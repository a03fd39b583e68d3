package router

import (
	"net/http"
	"strings"

	"recovery-backend/internal/config"
	"recovery-backend/internal/handlers"
	"recovery-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handlers everything the router mounts
type Handlers struct {
	Recovery   *handlers.RecoveryHandler
	Diagnostic *handlers.DiagnosticHandler
}

func SetupRouter(cfg *config.Config, h Handlers, logger *logrus.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.CORS(cfg.CORS, logger))

	metricsOnly := middleware.NewLocalhostOnly(logger, cfg.Metrics.AllowedIPs)

	// ============ Service ============
	r.GET("/", handlers.RootHandler)
	r.GET("/test", h.Diagnostic.TestDatabaseHandler)

	// ============ Check ============
	r.GET("/ping", handlers.PingHandler)
	r.GET("/health", handlers.HealthCheckHandler)

	// ============ Prometheus Metrics ============
	r.GET("/metrics", metricsOnly.Restrict(), gin.WrapH(promhttp.Handler()))

	// ============ API Routes ============
	api := r.Group("/api")
	{
		recovery := api.Group("/recovery")
		{
			recovery.POST("", h.Recovery.CreateRecoveryRequestHandler)
			recovery.GET("", h.Recovery.ListRecoveryRequestsHandler)
		}
	}

	// ============ NoRoute handler for 404 ============
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "not_found",
				"message":    "Endpoint not found",
				"path":       path,
				"suggestion": "Check /api endpoints for available APIs",
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "not_found",
			"message":    "API endpoint not found",
			"path":       path,
			"suggestion": "Available: GET/POST /api/recovery",
		})
	})

	return r
}
