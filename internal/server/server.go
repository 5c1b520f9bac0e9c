// Package server provides HTTP server setup and configuration.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/sebasr/drivesense/internal/alerting"
	"github.com/sebasr/drivesense/internal/behavior"
	"github.com/sebasr/drivesense/internal/config"
	"github.com/sebasr/drivesense/internal/database"
	"github.com/sebasr/drivesense/internal/handlers"
	"github.com/sebasr/drivesense/internal/models"
	"github.com/sebasr/drivesense/internal/repository"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if request ID already exists in header
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			// Generate new UUID for request ID
			requestID = uuid.New().String()
		}

		// Set request ID in context and response header
		c.Set("RequestID", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// NewRateLimitMiddleware creates a rate limiting middleware using ulule/limiter.
// Telemetry feeds are chatty, so the limit is generous: 600 requests
// per minute per IP address.
func NewRateLimitMiddleware() gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  600,
	}

	// Create in-memory store
	store := memory.NewStore()

	// Create rate limiter instance
	instance := limiter.New(store, rate)

	// Create and return Gin middleware
	return mgin.NewMiddleware(instance)
}

// Dependencies holds all dependencies needed to create a server
type Dependencies struct {
	Config    *config.Config
	Engine    *behavior.Engine
	ScoreRepo repository.ScoreRepository // Optional: nil disables score history
	Notifier  alerting.Notifier          // Optional: nil disables alert delivery
	DB        *database.DB               // Optional: nil skips the DB health probe
}

// New creates a new Gin router with all routes configured
func New(deps *Dependencies) *gin.Engine {
	// Set Gin to release mode to disable ANSI colors in logs
	gin.SetMode(gin.ReleaseMode)

	// Use gin.New() instead of gin.Default() to have explicit control over middleware
	router := gin.New()

	// Add recovery middleware (without colored output)
	router.Use(gin.Recovery())

	// Add logger middleware without colored output
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(_ gin.LogFormatterParams) string {
			// Custom log format without ANSI color codes
			return ""
		},
		Output:    nil,
		SkipPaths: []string{"/api/v1/health"}, // Skip health check logging
	}))

	// Add CORS middleware for dashboard clients
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Encoding", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Add middlewares
	router.Use(RequestIDMiddleware())
	router.Use(NewRateLimitMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	minSeverity := models.Severity(deps.Config.Alerting.MinSeverity)

	// Initialize handlers
	telemetryHandler := handlers.NewTelemetryHandler(deps.Engine, deps.Notifier, minSeverity)
	scoreHandler := handlers.NewScoreHandler(deps.Engine, deps.ScoreRepo, deps.Config.Engine.DefaultPeriodHours)
	healthHandler := handlers.NewHealthHandler(deps.Engine, deps.DB)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		// Ingestion routes
		v1.POST("/telemetry", telemetryHandler.Ingest)
		v1.POST("/telemetry/batch", telemetryHandler.IngestBatch)

		// Per-vehicle routes
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("/:id/score", scoreHandler.GetScore)
			vehicles.GET("/:id/score/history", scoreHandler.GetScoreHistory)
			vehicles.GET("/:id/fuel-validation", scoreHandler.GetFuelValidation)
			vehicles.GET("/:id/events", telemetryHandler.Events)
		}

		// Fleet routes
		v1.GET("/fleet/summary", scoreHandler.GetFleetSummary)
	}

	return router
}
