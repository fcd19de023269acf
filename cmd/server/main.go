package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/partspoint/backend/internal/agent"
	"github.com/partspoint/backend/internal/ai"
	"github.com/partspoint/backend/internal/api/handlers"
	"github.com/partspoint/backend/internal/config"
	"github.com/partspoint/backend/internal/database"
	"github.com/partspoint/backend/internal/health"
	"github.com/partspoint/backend/internal/middleware"
	"github.com/partspoint/backend/internal/repository"
	"github.com/partspoint/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional in deployed environments
	_ = godotenv.Load()

	logger := utils.GetLogger()
	logger.Info("Starting support backend...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := cfg.ValidateGeneration(); err != nil {
		logger.WithError(err).Fatal("Generation configuration validation failed")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	generator := buildGenerator(cfg, logger)

	engine := agent.NewEngine(repoManager.Knowledge, repoManager.InteractionLog, generator, logger)
	engine.SetGenerationTimeout(cfg.AnswerService.Timeout)

	askHandler := handlers.NewAskHandler(engine, repoManager, cache, logger)
	healthChecker := health.NewHealthChecker(dbManager, repoManager.SystemHealth, logger, cfg.AnswerService.BaseURL)

	router := setupRouter(cfg, askHandler, healthChecker, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go healthChecker.PeriodicHealthCheck(ctx, time.Minute)

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	logger.Info("Server stopped")
}

// buildGenerator prefers OpenAI when a key is configured, otherwise the
// hosted answer endpoint; both are wrapped with retry.
func buildGenerator(cfg *config.Config, logger *logrus.Logger) ai.Generator {
	var generator ai.Generator
	if cfg.OpenAI.APIKey != "" {
		logger.Info("Using OpenAI answer generation")
		generator = ai.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	} else {
		logger.Info("Using hosted answer service")
		generator = ai.NewClient(cfg.AnswerService.BaseURL, cfg.AnswerService.APIKey, cfg.AnswerService.Timeout, logger)
	}
	return ai.WithRetry(generator, ai.DefaultRetryConfig(), logger)
}

func setupRouter(cfg *config.Config, askHandler *handlers.AskHandler, healthChecker *health.HealthChecker, logger *logrus.Logger) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	router.GET("/health", func(c *gin.Context) {
		if cached, err := healthChecker.CheckCached(c.Request.Context()); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
		c.JSON(http.StatusOK, healthChecker.CheckAll())
	})
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(rateLimiter.RateLimit())
	{
		v1.POST("/ask", askHandler.HandleAsk)
		v1.POST("/feedback", askHandler.HandleFeedback)
		v1.GET("/stats", askHandler.HandleStats)
		v1.GET("/suggestions", askHandler.HandleSuggestions)
	}

	return router
}
