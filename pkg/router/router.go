package router

import (
	"net/http"

	"techpal/backend/internal/api"
	"techpal/backend/pkg/di"
	"techpal/backend/pkg/errors"
	"techpal/backend/pkg/logger"
	"techpal/backend/pkg/middleware"
	"techpal/backend/pkg/observability"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	// Use the container's logger
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	// Configure Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))

	// Add custom error handler middleware
	engine.Use(errors.ErrorHandler())

	// Add custom recovery middleware with structured logging instead of default
	engine.Use(errors.RecoveryWithLogger())

	// Record request metrics
	engine.Use(observability.Middleware())

	// Apply rate limiting to all routes
	rateLimiterOpts := middleware.DefaultRateLimiterOptions()
	rateLimiterOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	rateLimiterOpts.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, rateLimiterOpts)
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	// Add CORS middleware
	r.Engine.Use(corsMiddleware())

	// Initialize controllers
	chatController := api.NewChatController(r.Container.ChatService)
	conversationController := api.NewConversationController(r.Container.ConversationService)

	chatController.RegisterRoutes(r.Engine)
	conversationController.RegisterRoutes(r.Engine)

	// Health and metrics endpoints
	r.setupHealthRoutes()
	r.Engine.GET("/metrics", observability.MetricsHandler())
}

// corsMiddleware allows the browser-based chat UI to call the API
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
