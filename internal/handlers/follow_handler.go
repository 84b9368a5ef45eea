package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
	"github.com/rijalsawan/photography-sub000/internal/services"
)

// FollowHandler handles HTTP requests related to follows
type FollowHandler struct {
	follows          *services.FollowService
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService, followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{follows: follows, followRepository: followRepo, userRepository: userRepo}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.Follow)
	g.DELETE("/users/:id/follow", h.Unfollow)
	g.GET("/users/:id/follow-status", h.GetFollowStatus)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

func (h *FollowHandler) Follow(c echo.Context) error {
	res, err := h.follows.Follow(c.Request().Context(), middleware.ActorID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"message":        "user followed",
		"following":      res.Following,
		"followersCount": res.FollowersCount,
	})
}

func (h *FollowHandler) Unfollow(c echo.Context) error {
	res, err := h.follows.Unfollow(c.Request().Context(), middleware.ActorID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"message":        "user unfollowed",
		"following":      res.Following,
		"followersCount": res.FollowersCount,
	})
}

// GetFollowStatus never fails: a lookup error reads as not following.
func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	following := h.follows.IsFollowing(c.Request().Context(), middleware.ActorID(c), c.Param("id"))
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"isFollowing": following,
	})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listUsers(c, "followers", h.followRepository.GetFollowers)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listUsers(c, "following", h.followRepository.GetFollowing)
}

func (h *FollowHandler) listUsers(c echo.Context, key string, list func(ctx context.Context, userID string, offset, limit int) ([]models.User, int64, error)) error {
	ctx := c.Request().Context()
	userID := c.Param("id")
	if _, err := h.userRepository.GetUserByID(ctx, userID); err != nil {
		return notFoundOr(err, "user")
	}

	p := parsePage(c)
	users, total, err := list(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		return apperrors.Wrapf(err, "list %s", key)
	}
	return respondPage(c, key, compactUsers(users), p, total)
}

func compactUsers(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
