package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/router"
	"github.com/rijalsawan/photography-sub000/internal/services"
	"github.com/rijalsawan/photography-sub000/pkg/config"
	"github.com/rijalsawan/photography-sub000/pkg/firebase"
	"github.com/rijalsawan/photography-sub000/pkg/logger"
	"github.com/rijalsawan/photography-sub000/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFile, cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.CloseDB()

	if err := db.Postgres.AutoMigrate(models.All()...); err != nil {
		log.Fatal("Failed to auto migrate models", zap.Error(err))
	}
	log.Info("PostgreSQL auto-migrations completed")

	deps := router.Deps{
		DB:             db.Postgres,
		Log:            log,
		Production:     cfg.IsProduction(),
		WebhookSecret:  cfg.WebhookSecret,
		MaxUploadBytes: cfg.MaxUploadBytes,
		DedupWindow:    cfg.NotificationDedupWindow,
		RateLimit:      cfg.RateLimitRequests,
		RateWindow:     cfg.RateLimitWindow,
	}

	deps.Verifier, deps.Directory = initAuth(ctx, cfg, log)

	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		if err := store.CheckBucketAccess(ctx); err != nil {
			log.Warn("S3 bucket is not reachable", zap.String("bucket", cfg.S3Bucket), zap.Error(err))
		}
		deps.Store = store
	} else {
		log.Warn("S3_BUCKET not set, photo uploads are disabled")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Redis ping failed, rate limited requests will be rejected until it recovers", zap.Error(err))
		}
		deps.Redis = rdb
	} else {
		log.Info("REDIS_ADDR not set, rate limiting disabled")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	config.SetupMiddleware(e, log)
	router.SetupRoutes(e, deps)

	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", zap.Error(err))
	}
}

// initAuth picks the token verifier. Firebase also serves as the user directory.
func initAuth(ctx context.Context, cfg *config.Config, log *zap.Logger) (middleware.TokenVerifier, services.UserDirectory) {
	switch cfg.AuthProvider {
	case "jwt":
		verifier, err := middleware.NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			log.Fatal("Failed to initialize JWT verifier", zap.Error(err))
		}
		return verifier, nil
	case "firebase":
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
		if err != nil {
			log.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		return app, app
	default:
		log.Fatal("unknown AUTH_PROVIDER", zap.String("provider", cfg.AuthProvider))
		return nil, nil
	}
}
