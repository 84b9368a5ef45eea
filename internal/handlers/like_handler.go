package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
	"github.com/rijalsawan/photography-sub000/internal/services"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	engagement     *services.EngagementService
	likeRepository repositories.LikeRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.EngagementService, likeRepo repositories.LikeRepository) *LikeHandler {
	return &LikeHandler{engagement: engagement, likeRepository: likeRepo}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/photos/:id/like", h.ToggleLike)
	g.GET("/photos/:id/like", h.GetLikeStatus)
}

// ToggleLike likes or unlikes a photo for the caller.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	res, err := h.engagement.ToggleLike(c.Request().Context(), middleware.ActorID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"liked":     res.Liked,
		"likeCount": res.LikeCount,
	})
}

// GetLikeStatus reports whether the caller likes the photo, with the like count.
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	ctx := c.Request().Context()
	photoID := c.Param("id")

	liked, err := h.likeRepository.HasUserLikedPhoto(ctx, photoID, middleware.ActorID(c))
	if err != nil {
		liked = false
	}
	count, err := h.likeRepository.GetLikesCountByPhotoID(ctx, photoID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"liked":     liked,
		"likeCount": count,
	})
}
