// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"qrstudio-backend/internal/config"
	"qrstudio-backend/internal/database"
	"qrstudio-backend/internal/generator"
	"qrstudio-backend/internal/handlers"
	"qrstudio-backend/internal/middleware"
	"qrstudio-backend/internal/repository"
	"qrstudio-backend/internal/routes"
	"qrstudio-backend/internal/services"
)

const requestTimeout = 60 * time.Second

func initLogger(env string) *zap.Logger {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

// newGenerator wires the cache and, when a render endpoint is configured, the
// server-side strategy.
func newGenerator(cfg *config.Config, logger *zap.Logger) *generator.Generator {
	opts := []generator.Option{
		generator.WithLogger(logger),
		generator.WithImageQuality(cfg.QR.ImageQuality),
		generator.WithRenderTimeout(cfg.QR.RenderTimeout),
	}
	if cfg.Render.EndpointURL != "" {
		opts = append(opts, generator.WithStrategy(
			generator.MethodServerSide,
			generator.NewRemoteRenderer(cfg.Render.EndpointURL, cfg.Render.Timeout),
		))
	}
	return generator.New(generator.NewCache(cfg.QR.CacheTTL, cfg.QR.SweepThreshold), opts...)
}

func main() {
	// Initialize logger first
	logger := initLogger(os.Getenv("ENV"))
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	logger.Info("Starting qrstudio-backend server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Bool("server_side_rendering", cfg.Render.EndpointURL != ""))

	db, err := database.NewMongoDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Error("Error closing database connection", zap.Error(err))
		}
	}()

	logger.Info("Successfully connected to MongoDB")

	// The JWKS refresh goroutine lives until shutdown.
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	verifier, err := middleware.NewJWTVerifier(appCtx, cfg.Auth.JWKSURL, cfg.Auth.IssuerURL, cfg.Auth.Audience)
	if err != nil {
		logger.Fatal("Failed to initialize token verifier", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db.GetCollection(database.UsersCollection))
	historyRepo := repository.NewHistoryRepository(db.GetCollection(database.HistoryCollection))
	prefsRepo := repository.NewPreferencesRepository(db.GetCollection(database.PreferencesCollection))
	usageRepo := repository.NewUsageRepository(db.GetCollection(database.UsageCollection))

	userService := services.NewUserService(userRepo)
	historyService := services.NewHistoryService(historyRepo)
	preferencesService := services.NewPreferencesService(prefsRepo)
	usageService := services.NewUsageService(usageRepo)
	qrService := services.NewQRService(newGenerator(cfg, logger), historyService, usageService)

	logger.Info("All services initialized successfully")

	h := &routes.Handlers{
		Health:      handlers.NewHealthHandler(db),
		User:        handlers.NewUserHandler(userService),
		QR:          handlers.NewQRHandler(qrService),
		History:     handlers.NewHistoryHandler(historyService),
		Preferences: handlers.NewPreferencesHandler(preferencesService),
		Usage:       handlers.NewUsageHandler(usageService),
	}

	router := routes.SetupRoutes(h, routes.Dependencies{
		Logger:         logger,
		Verifier:       verifier,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		RequestTimeout: requestTimeout,

		MaxRequestBytes:   cfg.Server.MaxRequestBytes,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	})

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", serverAddr))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Received shutdown signal, shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight usage records land before the database closes.
	usageService.Wait()

	logger.Info("Server exited gracefully")
}
