package router

import (
	"os"
	"time"

	"techpal/backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// setupHealthRoutes registers the health check endpoint
func (r *Router) setupHealthRoutes() {
	healthHandler := func(c *gin.Context) {
		// Check database connection
		dbStatus := "ok"
		if err := r.Container.DB.Exec("SELECT 1").Error; err != nil {
			dbStatus = err.Error()
			r.Logger.Error("Database health check failed", "error", err)
		}

		cfg := r.Container.Config

		c.JSON(200, gin.H{
			"status":    "ok",
			"version":   os.Getenv("APP_VERSION"),
			"timestamp": time.Now().Format(time.RFC3339),
			"components": gin.H{
				"database": dbStatus,
			},
			"llm": gin.H{
				"provider": cfg.LLM.Provider,
				"providers_configured": gin.H{
					config.ProviderOpenAI:    cfg.LLM.OpenAIKey != "",
					config.ProviderAnthropic: cfg.LLM.AnthropicKey != "",
				},
			},
		})
	}

	r.Engine.GET("/health", healthHandler)
}
