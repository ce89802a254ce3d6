package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appintegration "github.com/pos/backend/internal/application/integration"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/infrastructure/persistence"
	"github.com/pos/backend/internal/interfaces/http/handler"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/pos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting POS integration backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	mappingRepo := persistence.NewGormMappingRepository(db.DB)
	businessRepo := persistence.NewGormBusinessRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	reconciliationRepo := persistence.NewGormReconciliationRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db)

	// Initialize application services
	mappingService := appintegration.NewMappingService(
		mappingRepo,
		businessRepo,
		customerRepo,
		transactionRepo,
		log,
	)
	syncService := appintegration.NewCustomerSyncService(
		mappingService,
		customerRepo,
		reconciliationRepo,
		txManager,
		log,
	)
	tokenService := auth.NewIntegrationTokenService(cfg.Integration)

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(syncService, log)
	mappingHandler := handler.NewMappingHandler(mappingService, syncService, log)

	// Setup Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside the API group, no auth)
	engine.GET("/health", healthHandler(db, log))

	// Integration domain routes
	r := router.NewRouter(engine)
	integrationRoutes := router.NewDomainGroup("integration", "/integration")

	// Webhook routes: authenticated by HMAC signature over the raw body, not
	// by bearer token. The signature middleware also enforces the body cap.
	webhookRoutes := integrationRoutes.Group("webhook", "/webhook")
	webhookRoutes.Use(middleware.WebhookSignature(cfg.Integration.WebhookSecret, cfg.Integration.MaxWebhookBody))
	webhookRoutes.POST("/customer-created", webhookHandler.CustomerCreated)
	webhookRoutes.POST("/customer-updated", webhookHandler.CustomerUpdated)
	webhookRoutes.POST("/customer-deleted", webhookHandler.CustomerDeleted)

	// Administrative routes: bearer token with the integration scope
	integrationAuth := middleware.IntegrationAuth(tokenService)

	mappingRoutes := integrationRoutes.Group("mappings", "/mappings")
	mappingRoutes.Use(integrationAuth)
	mappingRoutes.POST("/business", mappingHandler.CreateBusinessMapping)
	mappingRoutes.GET("", mappingHandler.ListMappings)
	mappingRoutes.GET("/stats", mappingHandler.GetMappingStats)
	mappingRoutes.GET("/validate", mappingHandler.ValidateMappings)
	mappingRoutes.GET("/:entityType/:posId", mappingHandler.GetMapping)
	mappingRoutes.DELETE("/:entityType/:posId", mappingHandler.DeleteMapping)

	syncRoutes := integrationRoutes.Group("sync", "/sync")
	syncRoutes.Use(integrationAuth)
	syncRoutes.GET("/stats", mappingHandler.GetSyncStats)

	r.Register(integrationRoutes)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
