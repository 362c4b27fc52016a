package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/apnadera/backend-go/internal/api"
	"github.com/apnadera/backend-go/internal/config"
	"github.com/apnadera/backend-go/internal/database"
	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/internal/database/service"
	"github.com/apnadera/backend-go/internal/handler"
	"github.com/apnadera/backend-go/internal/logger"
	"github.com/apnadera/backend-go/internal/mailer"
	"github.com/apnadera/backend-go/internal/middleware"
	"github.com/apnadera/backend-go/internal/worker"
)

func main() {
	// 1. Config
	_ = godotenv.Load()
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	if err := cfg.Validate(); err != nil {
		appLogger.Error("❌ Invalid configuration", "error", err)
		os.Exit(1)
	}

	appLogger.Info("🚀 [ApnaDera] Starting backend...",
		"environment", cfg.AppEnv,
		"port", cfg.HTTPPort,
	)

	// 3. Connect to Database
	db, err := database.Connect(cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	// 5. Initialize Redis Client
	redisClient, err := database.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis for stats caching", "error", err)
		appLogger.Info("💡 Owner stats will be computed from Postgres on every request")
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, cfg, appLogger)
	propertyService := service.NewPropertyService(propertyRepo, favoriteRepo, redisClient, appLogger)
	userService := service.NewUserService(userRepo, propertyRepo, favoriteRepo, redisClient, appLogger)

	// 7. Initialize Rate Limiter
	rateLimiter, err := middleware.NewRateLimiter(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis, using no-op rate limiter", "error", err)
		rateLimiter = middleware.NewNoOpRateLimiter(appLogger)
	}
	defer rateLimiter.Close()

	// 8. Initialize Mailer
	var inquiryMailer mailer.Mailer
	if cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		inquiryMailer, err = mailer.NewSMTPMailer(cfg, appLogger)
		if err != nil {
			appLogger.Error("❌ Failed to configure SMTP mailer", "error", err)
			os.Exit(1)
		}
	} else {
		inquiryMailer = mailer.NewNoopMailer(appLogger)
	}

	// 9. Worker Pool for background mail dispatch
	pool := worker.NewPool(appLogger)
	defer pool.Shutdown(30 * time.Second)

	// 10. Initialize Handlers & Middleware
	authHandler := handler.NewAuthHandler(authService, userService, appLogger)
	propertyHandler := handler.NewPropertyHandler(propertyService, cfg, appLogger)
	userHandler := handler.NewUserHandler(userService, appLogger)
	contactHandler := handler.NewContactHandler(propertyRepo, inquiryMailer, pool, appLogger)
	healthHandler := handler.NewHealthHandler(db, appLogger)
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)

	r := api.SetupRouter(authHandler, propertyHandler, userHandler, contactHandler, healthHandler, authMiddleware, rateLimiter)

	// 11. Start HTTP Server
	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	appLogger.Info("🌍 [ApnaDera] HTTP Server running...", "addr", addr)
	if err := r.Run(addr); err != nil {
		appLogger.Error("❌ HTTP Server failed to start", "error", err)
		os.Exit(1)
	}
}
