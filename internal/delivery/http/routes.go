package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skinmatch/backend/config"
	"github.com/skinmatch/backend/internal/telemetry"
)

const rateLimitIdleTTL = 10 * time.Minute

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, metrics *telemetry.Metrics, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(MetricsMiddleware(metrics))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Operational endpoints
	router.GET("/health", handler.HealthCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	limited := RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst, rateLimitIdleTTL, metrics)

	// API v1 routes
	v1 := router.Group("/api/v1", limited)
	{
		v1.POST("/predict", handler.Predict)
		v1.POST("/filter-products", handler.FilterProducts)
		v1.POST("/recommend", handler.Recommend)

		v1.GET("/categories", handler.Categories)
		v1.GET("/concerns", handler.Concerns)
		v1.GET("/product-types", handler.ProductTypes)
	}

	// Unversioned paths used by the web frontend
	legacy := router.Group("", limited)
	{
		legacy.POST("/predict", handler.Predict)
		legacy.POST("/filter-products", handler.FilterProducts)
	}

	return router
}
