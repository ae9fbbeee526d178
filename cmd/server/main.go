package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedbridge/backend/internal/application/importer"
	"github.com/feedbridge/backend/internal/infrastructure/auth"
	"github.com/feedbridge/backend/internal/infrastructure/config"
	"github.com/feedbridge/backend/internal/infrastructure/logger"
	"github.com/feedbridge/backend/internal/infrastructure/persistence"
	"github.com/feedbridge/backend/internal/interfaces/http/handler"
	"github.com/feedbridge/backend/internal/interfaces/http/middleware"
	"github.com/feedbridge/backend/internal/interfaces/http/router"
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

	log.Info("Starting Feedbridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
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
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	runLogRepo := persistence.NewGormRunLogRepository(db.DB)
	metadataRepair := persistence.NewGormMetadataRepair(db.DB)

	// Initialize import engine
	importCfg, err := importer.FromAppConfig(cfg.Import)
	if err != nil {
		log.Fatal("Invalid import configuration", zap.Error(err))
	}
	finalizer := importer.NewFinalizer(metadataRepair, importCfg, log)
	importService := importer.NewService(orderRepo, productRepo, runLogRepo, finalizer, importCfg, log)

	// Initialize auth
	tokenService := auth.NewTokenService(cfg.Auth)
	if !tokenService.Enabled() {
		log.Warn("No operator token configured, admin endpoints are unauthenticated")
	}

	// Initialize handlers
	importHandler := handler.NewImportHandler(importService, runLogRepo, cfg.Import.MaxUploadBytes, log)
	authHandler := handler.NewAuthHandler(tokenService)
	systemHandler := handler.NewSystemHandler(db)

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Global middleware
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.Import.MaxUploadBytes + 1<<20))

	// Health check outside the API group, no auth
	engine.GET("/health", systemHandler.Health)

	// HTML admin surface
	adminGroup := engine.Group("/admin", middleware.OperatorAuth(tokenService))
	adminGroup.GET("/import", importHandler.ShowPage)
	adminGroup.POST("/import", importHandler.Run)

	// JSON API
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/token", authHandler.IssueToken)
	r.Register(authRoutes)

	importRoutes := router.NewDomainGroup("import", "/import")
	importRoutes.Use(middleware.OperatorAuth(tokenService))
	importRoutes.POST("/run", importHandler.Run)
	importRoutes.GET("/last-run", importHandler.LastRun)
	r.Register(importRoutes)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
