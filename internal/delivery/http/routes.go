package http

import (
	"github.com/gin-gonic/gin"

	"github.com/travelperks/dealdedup/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		// Deal endpoints
		deals := v1.Group("/deals")
		{
			deals.POST("/match", handler.MatchDeals)
			deals.POST("/parse", handler.ParseHQ)
		}

		// Vendor endpoints
		vendors := v1.Group("/vendors")
		{
			vendors.GET("/canonical", handler.CanonicalVendor)
		}
	}

	return router
}
