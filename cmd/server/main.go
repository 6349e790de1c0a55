package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taragold/taraerp-backend/config"
	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/controller"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/internal/app/service"
	"github.com/taragold/taraerp-backend/internal/db"
	"github.com/taragold/taraerp-backend/internal/middleware"
	"github.com/taragold/taraerp-backend/internal/router"
	"github.com/taragold/taraerp-backend/internal/scheduler"
	"github.com/taragold/taraerp-backend/internal/storage"
	ws "github.com/taragold/taraerp-backend/internal/websocket"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"github.com/taragold/taraerp-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting TARAGOLD ERP Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize redis. Token blacklisting and OTP throttling degrade
	// gracefully without it, so a failure is not fatal.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Failed to connect to redis, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	partnerRepo := repository.NewPartnerRepository(db.GetDB())
	kycRepo := repository.NewKYCRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())
	resetRepo := repository.NewPasswordResetRepository(db.GetDB())

	// Websocket hub for realtime notifications
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		codegen.NewKeyedMutex(),
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	passwordResetService := service.NewPasswordResetService(resetRepo, userRepo)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	partnerService := service.NewPartnerService(partnerRepo, codegen.NewKeyedMutex())
	kycService := service.NewKYCService(kycRepo, partnerRepo, notificationService)
	orderService := service.NewOrderService(
		orderRepo,
		partnerRepo,
		codegen.NewKeyedMutex(),
		notificationService,
		db.GetDB(),
	)
	reportService := service.NewReportService(orderRepo)

	// Presigned upload storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService, cfg.JWT.AccessTokenExpiry)
	partnerController := controller.NewPartnerController(partnerService)
	kycController := controller.NewKYCController(kycService)
	orderController := controller.NewOrderController(orderService, reportService)
	notificationController := controller.NewNotificationController(notificationService, hub)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		partnerController,
		kycController,
		orderController,
		notificationController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Background enrichment jobs
	enrichment := scheduler.NewEnrichmentScheduler(partnerRepo, kycRepo, resetRepo)
	if err := enrichment.Start(); err != nil {
		logger.Fatal("Failed to start enrichment scheduler", err)
	}

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	enrichment.Stop()
	logger.Info("Server stopped successfully")
}
