package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"health-records-platform/config"
	deliveryHttp "health-records-platform/internal/delivery/http"
	"health-records-platform/internal/delivery/http/handler"
	"health-records-platform/internal/delivery/http/middleware"
	"health-records-platform/internal/infrastructure/cache"
	"health-records-platform/internal/infrastructure/database"
	"health-records-platform/internal/repository"
	"health-records-platform/internal/service"
	"health-records-platform/internal/usecase"
	"health-records-platform/pkg/signature"
	"health-records-platform/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	scheduler       *service.BillingScheduler
	cancelScheduler context.CancelFunc
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Apply schema migrations
	if err := database.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	app.initialize(cfg, db, redisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initialize wires repositories, services, usecases, handlers and the HTTP
// server together.
func (app *App) initialize(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) {
	// Initialize signature service
	signatureService := signature.NewService(cfg.Credential)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	profileRepo := repository.NewHealthProfileRepository()
	grantRepo := repository.NewAccessGrantRepository()
	credentialRepo := repository.NewEmergencyCredentialRepository()
	providerRepo := repository.NewInsuranceProviderRepository()
	connectionRepo := repository.NewInsuranceConnectionRepository()
	claimRepo := repository.NewClaimRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(db, log, auditLogRepo)
	credentialCache := service.NewCredentialCache(redisClient, log)
	chargePolicy := service.NewRandomChargePolicy(cfg.Billing.ChargeSuccessRate)
	billingService := service.NewBillingService(db, log, providerRepo, connectionRepo, auditService, chargePolicy)

	// Initialize usecases
	identityUsecase := usecase.NewIdentityUsecase(db, log, userRepo, profileRepo, auditService)
	accessGrantUsecase := usecase.NewAccessGrantUsecase(db, log, userRepo, grantRepo, auditService)
	credentialUsecase := usecase.NewEmergencyCredentialUsecase(db, log, userRepo, profileRepo, credentialRepo, auditService, credentialCache, signatureService, cfg.Credential.TTL)
	insuranceUsecase := usecase.NewInsuranceUsecase(db, log, providerRepo, connectionRepo, auditService)
	claimUsecase := usecase.NewClaimUsecase(db, log, userRepo, providerRepo, connectionRepo, claimRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	identityHandler := handler.NewIdentityHandler(identityUsecase, customValidator)
	accessGrantHandler := handler.NewAccessGrantHandler(accessGrantUsecase, customValidator)
	credentialHandler := handler.NewCredentialHandler(credentialUsecase, customValidator)
	insuranceHandler := handler.NewInsuranceHandler(insuranceUsecase, customValidator)
	claimHandler := handler.NewClaimHandler(claimUsecase, customValidator)
	billingHandler := handler.NewBillingHandler(billingService)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	walletMiddleware := middleware.NewWalletAuthMiddleware(db, log, userRepo)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		identityHandler,
		accessGrantHandler,
		credentialHandler,
		insuranceHandler,
		claimHandler,
		billingHandler,
		auditLogHandler,
		walletMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}

	// Billing scheduler runs for the life of the process
	app.scheduler = service.NewBillingScheduler(billingService, log, cfg.Billing.SweepInterval)
}

// Run starts the HTTP server and billing scheduler and handles graceful
// shutdown.
func (app *App) Run() {
	schedulerCtx, cancel := context.WithCancel(context.Background())
	app.cancelScheduler = cancel
	app.scheduler.Start(schedulerCtx)

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop the billing scheduler and wait for an in-flight sweep to finish
	if app.cancelScheduler != nil {
		app.cancelScheduler()
		app.scheduler.Wait()
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
