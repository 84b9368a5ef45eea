package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rijalsawan/photography-sub000/internal/handlers"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/notify"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
	"github.com/rijalsawan/photography-sub000/internal/services"
	"github.com/rijalsawan/photography-sub000/internal/validators"
	"github.com/rijalsawan/photography-sub000/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators SetupRoutes wires into handlers. Redis and Directory
// are optional.
type Deps struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Verifier  middleware.TokenVerifier
	Directory services.UserDirectory
	Store     storage.ImageStore
	Redis     *redis.Client

	Production     bool
	WebhookSecret  string
	MaxUploadBytes int64
	DedupWindow    time.Duration
	RateLimit      int
	RateWindow     time.Duration
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	e.HTTPErrorHandler = handlers.ErrorHandler(log, d.Production)
	e.Validator = validators.NewValidator()
	e.Use(middleware.Metrics())

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(d.DB).HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(d.DB)
	photoRepo := repositories.NewPostgresPhotoRepository(d.DB)
	likeRepo := repositories.NewPostgresLikeRepository(d.DB)
	commentRepo := repositories.NewPostgresCommentRepository(d.DB)
	followRepo := repositories.NewPostgresFollowRepository(d.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(d.DB)

	// --- Services ---
	notifier := notify.New(d.DedupWindow, log.Named("notify"))
	counters := services.NewCounterService(d.DB, log)
	users := services.NewUserService(d.DB, d.Directory, counters, log)
	engagement := services.NewEngagementService(d.DB, users, notifier, log)
	follows := services.NewFollowService(d.DB, users, notifier, log)
	photos := services.NewPhotoService(d.DB, d.Store, users, d.MaxUploadBytes, log)

	// --- Unprotected routes for identity provider events ---
	hooks := e.Group("/api/v1")
	handlers.NewAuthHandler(users, d.WebhookSecret, log).RegisterAuthRoutes(hooks)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(d.Verifier, log))
	api.Use(middleware.RateLimit(d.Redis, d.RateLimit, d.RateWindow, log))

	handlers.NewUserHandler(users, d.DB).RegisterProfileRoutes(api)
	handlers.NewPhotoHandler(photos, photoRepo, userRepo, likeRepo, followRepo, log).RegisterPhotoRoutes(api)
	handlers.NewLikeHandler(engagement, likeRepo).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(engagement, commentRepo, photoRepo).RegisterCommentRoutes(api)
	handlers.NewFollowHandler(follows, followRepo, userRepo).RegisterFollowRoutes(api)
	handlers.NewFeedHandler(photoRepo, userRepo, followRepo, likeRepo, log).RegisterFeedRoutes(api)
	handlers.NewNotificationHandler(notificationRepo).RegisterNotificationRoutes(api)

	log.Info("routes configured", zap.Int("count", len(e.Routes())))
}
