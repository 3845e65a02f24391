package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"knotty_backend/internal/auth"
	"knotty_backend/internal/cache"
	"knotty_backend/internal/config"
	"knotty_backend/internal/email"
	"knotty_backend/internal/handlers"
	"knotty_backend/internal/logger"
	"knotty_backend/internal/middleware"
	"knotty_backend/internal/models"
	"knotty_backend/internal/repositories"
	"knotty_backend/internal/routes"
	"knotty_backend/internal/services"
	"knotty_backend/internal/validator"
	"knotty_backend/pkg/apperrors"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env != "production")

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := autoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    address,
		Handler: ginRouter,
	}

	go func() {
		logger.Info(fmt.Sprintf("Server starting on %s", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	// Drain in-flight requests on SIGINT/SIGTERM before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	tokens := auth.NewTokenIssuer(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.SessionTTL)*time.Minute,
		time.Duration(cfg.JWT.TempTTL)*time.Minute,
	)

	var redisCache *cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		logger.Info("Redis cache initialized", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("Redis addr not configured, product cache disabled")
	}

	serviceContainer := initializeServices(cfg, gormDB, redisCache, tokens)
	appHandlers := initializeHandlers(serviceContainer)
	ginRouter := initializeGinRouter()

	routes.RegisterRoutes(ginRouter, appHandlers, tokens, routes.RateLimitConfig{
		RPS:   cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})

	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, redisCache *cache.Cache, tokens *auth.TokenIssuer) *services.ServiceContainer {
	emailProvider, err := email.NewProviderFromConfig(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize email provider", "error", err)
	}

	userRepo := repositories.NewUserRepository(gormDB)
	productRepo := repositories.NewProductRepository(gormDB)
	orderRepo := repositories.NewOrderRepository(gormDB)
	reviewRepo := repositories.NewReviewRepository(gormDB)

	return &services.ServiceContainer{
		AuthService:    services.NewAuthService(userRepo, emailProvider, tokens),
		UserService:    services.NewUserService(userRepo, productRepo, orderRepo),
		ProductService: services.NewProductService(productRepo, redisCache),
		OrderService:   services.NewOrderService(orderRepo, productRepo, redisCache),
		ReviewService:  services.NewReviewService(reviewRepo, orderRepo, productRepo),
		EmailService:   emailProvider,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:    handlers.NewUserHandler(baseHandler, services.UserService),
		ProductHandler: handlers.NewProductHandler(baseHandler, services.ProductService),
		OrderHandler:   handlers.NewOrderHandler(baseHandler, services.OrderService),
		ReviewHandler:  handlers.NewReviewHandler(baseHandler, services.ReviewService),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = false
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	return router
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ShippingAddress{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	)
}

// seedFirstAdmin creates the initial admin account from configuration.
// There is no HTTP route for creating admins.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	// Stored lowercase, matching how registration normalizes addresses.
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.Admin.Email))
	adminPassword := cfg.Admin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("Admin email or password not configured. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	name := cfg.Admin.Name
	if name == "" {
		name = "Administrator"
	}

	newAdmin := &models.User{
		Name:         name,
		Email:        adminEmail,
		PasswordHash: hash,
		Age:          18,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("First admin user created", "email", adminEmail)
	return nil
}
