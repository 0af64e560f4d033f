package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"saaskit_backend/internal/config"
	"saaskit_backend/internal/email"
	"saaskit_backend/internal/handlers"
	"saaskit_backend/internal/logger"
	"saaskit_backend/internal/middleware"
	"saaskit_backend/internal/models"
	"saaskit_backend/internal/routes"
	"saaskit_backend/internal/services"
	"saaskit_backend/internal/validator"
	"saaskit_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	workers.NewCleanupWorker(gormDB).Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	emailProvider := initializeEmailProvider(cfg)
	serviceContainer := services.NewServiceContainer(emailProvider, cfg)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(gormDB)

	authMW := middleware.AuthMiddleware(serviceContainer.SessionService)
	rateLimitMW := middleware.RateLimitMiddleware(
		initializeRedis(cfg),
		cfg.Auth.RateLimitPerMinute,
		time.Minute,
	)

	routes.RegisterRoutes(ginRouter, appHandlers, authMW, rateLimitMW)

	return ginRouter
}

func initializeEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured. Outgoing email is disabled.")
		return &NoopEmailProvider{}
	}
	smtpConfig := &email.SMTPConfig{
		Host:       cfg.Email.SMTPHost,
		Port:       cfg.Email.SMTPPort,
		Username:   cfg.Email.SMTPUsername,
		Password:   cfg.Email.SMTPPassword,
		FromEmail:  cfg.Email.FromEmail,
		FromName:   cfg.Email.FromName,
		AppBaseURL: cfg.Email.AppBaseURL,
	}
	return email.NewGomailProvider(smtpConfig, email.NewTemplateManager())
}

func initializeRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Warn("Redis is not configured. Rate limiting is disabled.")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable. Rate limiting is disabled.", "error", err)
		return nil
	}
	return client
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, container.SessionService, container.OnboardingService),
		UserHandler:         handlers.NewUserHandler(baseHandler, container.UserService),
		AdminHandler:        handlers.NewAdminHandler(baseHandler, container.UserService, container.ImpersonationService),
		OrganizationHandler: handlers.NewOrganizationHandler(baseHandler, container.OrganizationService),
		TodoHandler:         handlers.NewTodoHandler(baseHandler, container.TodoService),
		BillingHandler:      handlers.NewBillingHandler(baseHandler, container.BillingService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedFirstAdmin creates the bootstrap admin account on an empty
// install. The account is created verified so it can sign in at once.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.Admin.Email
	adminPassword := cfg.Admin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var adminUser models.User
	result := tx.Where("email = ?", adminEmail).First(&adminUser)

	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		tx.Rollback()
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found. Creating first admin...", "email", adminEmail)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	username := cfg.Admin.Username
	if username == "" {
		username = "admin"
	}

	newAdmin := &models.User{
		Email:         adminEmail,
		Username:      username,
		PasswordHash:  string(hashedPassword),
		Role:          models.UserRoleAdmin,
		EmailVerified: true,
	}
	if err := tx.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	org := &models.Organization{Name: "Administration"}
	if err := tx.Create(org).Error; err != nil {
		return fmt.Errorf("failed to create admin organization: %w", err)
	}
	membership := &models.Membership{
		OrganizationID: org.ID,
		UserID:         newAdmin.ID,
		Role:           models.MembershipRoleOwner,
	}
	if err := tx.Create(membership).Error; err != nil {
		return fmt.Errorf("failed to create admin membership: %w", err)
	}

	logger.Info("Successfully created first admin user", "email", adminEmail)
	return tx.Commit().Error
}
