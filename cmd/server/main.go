package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"golang-maintenance-work-order/internal/api/handlers"
	"golang-maintenance-work-order/internal/api/routes"
	"golang-maintenance-work-order/internal/config"
	"golang-maintenance-work-order/internal/repository"
	"golang-maintenance-work-order/internal/services/execution"
	"golang-maintenance-work-order/internal/services/notifier"
	"golang-maintenance-work-order/internal/services/workorders"
	"golang-maintenance-work-order/pkg/postgres"
	"golang-maintenance-work-order/pkg/ratelimit"
	"golang-maintenance-work-order/pkg/redis"
)

func main() {
	ctxCancel, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logrusLevel, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse log level")
	}

	logger.SetLevel(logrusLevel)

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Setup CORS
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Initialize repositories
	executionRepo := repository.NewWorkOrderExecutionRepository(db.DB)
	workOrderRepo := repository.NewWorkOrderRepository(db.DB)
	planRepo := repository.NewMaintenancePlanRepository(db.DB)
	locationRepo := repository.NewLocationRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)
	unitOfWork := repository.NewUnitOfWork(db.DB)

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize Redis client")
	}
	defer redisClient.Close()

	// Initialize services
	transitionNotifier, err := notifier.NewTelegramNotifier(&cfg.Telegram, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize transition notifier")
	}

	executionService := execution.NewExecutionService(cfg, logger, executionRepo, locationRepo, userRepo, unitOfWork, redisClient, transitionNotifier)
	workOrderService := workorders.NewWorkOrderService(cfg, logger, workOrderRepo, executionRepo, planRepo, unitOfWork)

	rateLimiter := ratelimit.NewAPIRateLimiter(&cfg.RateLimit, logger)
	rateLimiter.StartCleanupExpired(ctxCancel)

	// Initialize handlers
	executionHandler := handlers.NewExecutionHandler(executionService, logger)
	workOrderHandler := handlers.NewWorkOrderHandler(workOrderService, logger)

	// Setup routes
	routes.SetupRoutes(router, executionHandler, workOrderHandler, rateLimiter)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	cancel()
	rateLimiter.StopCleanupExpired()

	logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	} else {
		logger.Info("HTTP server shutdown completed successfully")
	}

	logger.Info("Server exited")
}
