package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techpal/backend/internal/models"
	"techpal/backend/pkg/config"
	"techpal/backend/pkg/di"
	"techpal/backend/pkg/logger"
	"techpal/backend/pkg/router"
)

func main() {
	// Load configuration (reads .env if present)
	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"
	if cfg.Server.Debug {
		logConfig.Level = string(logger.LevelDebug)
	}

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting TechPal API",
		"version", os.Getenv("APP_VERSION"),
		"provider", cfg.LLM.Provider,
	)

	// Initialize database
	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&models.Session{}, &models.Conversation{}, &models.Message{}); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// Initialize dependency injection container
	container, err := di.New(db, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	// Initialize and setup router
	r := router.New(container)
	r.SetupRoutes()

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	// Start the server in a goroutine
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline to wait for in-flight requests
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
		os.Exit(1)
	}

	log.Info("Server exited")
}
