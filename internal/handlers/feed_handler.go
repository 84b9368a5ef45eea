package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
	"go.uber.org/zap"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	photoRepository  repositories.PhotoRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	likeRepository   repositories.LikeRepository
	log              *zap.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	photoRepo repositories.PhotoRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
	log *zap.Logger,
) *FeedHandler {
	return &FeedHandler{
		photoRepository:  photoRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
		likeRepository:   likeRepo,
		log:              log,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/search", h.Search)
}

// GetFeed returns photos newest first. With following=true only the caller's own
// photos and those of accounts they follow are included.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()
	actorID := middleware.ActorID(c)
	p := parsePage(c)

	var authors []string
	if c.QueryParam("following") == "true" {
		ids, err := h.followRepository.GetFollowingIDs(ctx, actorID)
		if err != nil {
			return apperrors.Wrapf(err, "list followed users")
		}
		authors = append(ids, actorID)
	}

	photos, total, err := h.photoRepository.GetFeed(ctx, authors, p.Offset(), p.Limit)
	if err != nil {
		return apperrors.Wrapf(err, "load feed")
	}
	return respondPage(c, "photos", enrichPhotos(ctx, h.likeRepository, h.log, actorID, photos), p, total)
}

// Search finds users (type=users) or photos (type=photos, the default) by substring.
func (h *FeedHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return apperrors.Validation("q", "is required")
	}
	p := parsePage(c)

	switch c.QueryParam("type") {
	case "users":
		users, total, err := h.userRepository.SearchUsers(ctx, q, p.Offset(), p.Limit)
		if err != nil {
			return apperrors.Wrapf(err, "search users")
		}
		return respondPage(c, "users", compactUsers(users), p, total)
	case "", "photos":
		photos, total, err := h.photoRepository.SearchPhotos(ctx, q, p.Offset(), p.Limit)
		if err != nil {
			return apperrors.Wrapf(err, "search photos")
		}
		return respondPage(c, "photos", enrichPhotos(ctx, h.likeRepository, h.log, middleware.ActorID(c), photos), p, total)
	default:
		return apperrors.Validation("type", "must be one of users photos")
	}
}
