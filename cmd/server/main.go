package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"knackhook/screening/internal/auth"
	"knackhook/screening/internal/config"
	"knackhook/screening/internal/flow"
	"knackhook/screening/internal/gateway"
	"knackhook/screening/internal/handlers"
	"knackhook/screening/internal/jobs"
	"knackhook/screening/internal/llm"
	_ "knackhook/screening/internal/llm/gemini"
	"knackhook/screening/internal/metrics"
	"knackhook/screening/internal/present"
	"knackhook/screening/internal/prompts"
	"knackhook/screening/internal/routers"
	"knackhook/screening/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, authHandler *handlers.AuthHandler, screeningHandler *handlers.ScreeningHandler, extractHandler *handlers.ExtractHandler, saveHandler *handlers.SaveHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.AuthRoutes(router, authHandler)
	routers.ScreeningRoutes(router, screeningHandler)
	routers.DocumentRoutes(router, extractHandler, saveHandler)
}

// Helper functions for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initStore builds the key-value store named by the configuration.
func initStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return store.NewGormStore(db)
	case "postgres":
		host := getEnv("POSTGRES_HOST", "localhost")
		user := getEnv("POSTGRES_USER", "postgres")
		password := getEnv("POSTGRES_PASSWORD", "postgres")
		dbname := getEnv("POSTGRES_DB", "postgres")
		port := getEnv("POSTGRES_PORT", "5432")
		sslmode := getEnv("POSTGRES_SSLMODE", "disable")

		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			host, user, password, dbname, port, sslmode)

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return store.NewGormStore(db)
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return store.NewRedisStore(rdb), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("store", cfg.StoreBackend))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// AI provider based on configuration
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	kv, err := initStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}

	sessions := auth.NewManager(kv, logger)
	screeningGateway := gateway.New(aiProvider, promptManager, logger)
	presenter := present.NewPresenter(sessions)

	newController := func() *flow.Controller {
		return flow.NewController(screeningGateway, sessions, logger, flow.Config{
			CountdownSeconds: cfg.CountdownSeconds,
		})
	}

	screeningHandler := handlers.NewScreeningHandler(sessions, presenter, newController, logger)
	authHandler := handlers.NewAuthHandler(sessions, screeningHandler, logger)
	extractHandler := handlers.NewExtractHandler(logger)
	saveHandler := handlers.NewSaveHandler(cfg.DataDir, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, kv, cfg)

	// nightly snapshot of saved evaluation records
	archiverConfig := &jobs.ArchiverConfig{
		Schedule:   cfg.ArchiveSchedule,
		ArchiveDir: cfg.DataDir,
		Enabled:    cfg.ArchiveEnabled,
	}
	archiver := jobs.NewResultArchiver(kv, archiverConfig, logger)
	if archiverConfig.Enabled {
		if err := archiver.Start(); err != nil {
			logger.Error("Failed to start result archiver", zap.Error(err))
		} else {
			logger.Info("Result archiver started", zap.String("schedule", archiverConfig.Schedule))
		}
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware)

	registerRoutes(router, authHandler, screeningHandler, extractHandler, saveHandler, healthHandler)
	router.Handle("/metrics", metrics.Handler())

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Screening service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Screening service shutting down...")

	if archiverConfig.Enabled {
		archiver.Stop()
		logger.Info("Result archiver stopped")
	}
	screeningHandler.Reset()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Screening service exited")
}
