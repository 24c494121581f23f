package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coderr-app/coderr-backend/config"
	"github.com/coderr-app/coderr-backend/internal/app/controller"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/internal/app/service"
	"github.com/coderr-app/coderr-backend/internal/db"
	"github.com/coderr-app/coderr-backend/internal/middleware"
	"github.com/coderr-app/coderr-backend/internal/router"
	"github.com/coderr-app/coderr-backend/internal/scheduler"
	"github.com/coderr-app/coderr-backend/internal/storage"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"github.com/coderr-app/coderr-backend/pkg/redis"
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

	logger.Info("Starting Coderr Backend Server", map[string]interface{}{
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

	// Initialize redis for the stats cache (optional)
	statsCacheEnabled := cfg.Redis.Enabled
	if statsCacheEnabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, stats cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
			statsCacheEnabled = false
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close redis connection", err)
				}
			}()
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	profileRepo := repository.NewProfileRepository(db.GetDB())
	offerRepo := repository.NewOfferRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Initialize services
	profileService := service.NewProfileService(userRepo, profileRepo, orderRepo, reviewRepo, db.GetDB())
	authService := service.NewAuthService(userRepo, profileRepo, cfg.JWT, db.GetDB())
	offerService := service.NewOfferService(offerRepo, profileService, db.GetDB())
	orderService := service.NewOrderService(orderRepo, offerRepo, userRepo, profileService, db.GetDB())
	reviewService := service.NewReviewService(reviewRepo, userRepo, offerRepo, profileService, db.GetDB())
	statsService := service.NewStatsService(offerRepo, reviewRepo, profileRepo, statsCacheEnabled, cfg.Stats.CacheTTL)

	// Initialize object storage
	imageStorage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	profileController := controller.NewProfileController(profileService, imageStorage)
	offerController := controller.NewOfferController(offerService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)
	baseInfoController := controller.NewBaseInfoController(statsService)
	uploadController := controller.NewUploadController(imageStorage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the stats refresh scheduler
	if statsCacheEnabled {
		statsScheduler := scheduler.NewStatsScheduler(statsService, cfg.Stats.RefreshSchedule)
		if err := statsScheduler.Start(); err != nil {
			logger.Warn("Failed to start stats scheduler", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer statsScheduler.Stop()
		}
	}

	// Setup router
	r := router.NewRouter(
		authController,
		profileController,
		offerController,
		orderController,
		reviewController,
		baseInfoController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

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
	logger.Info("Server stopped successfully")
}
