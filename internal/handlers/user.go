package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/services"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	users *services.UserService
	db    *gorm.DB
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, db *gorm.DB) *UserHandler {
	return &UserHandler{users: users, db: db}
}

// RegisterProfileRoutes registers profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteProfile)
	g.GET("/users/:id", h.GetUser)
}

// GetUser returns a profile with follower, following and photo counts.
func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.users.GetProfile(c.Request().Context(), middleware.ActorID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, echo.Map{"user": profile})
}

// GetProfile returns the caller's own profile, creating the local row on first use.
func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	actorID := middleware.ActorID(c)

	if _, err := h.users.EnsureUser(ctx, h.db.WithContext(ctx), actorID); err != nil {
		return err
	}
	profile, err := h.users.GetProfile(ctx, actorID, actorID)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, echo.Map{"user": profile})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), middleware.ActorID(c), req)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, echo.Map{"user": user})
}

// DeleteProfile removes the caller's account and everything attached to it.
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	if err := h.users.DeleteUser(c.Request().Context(), middleware.ActorID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "account deleted"})
}
