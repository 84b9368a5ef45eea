package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/services"
	"go.uber.org/zap"
)

// WebhookSecretHeader carries the shared secret of identity provider webhooks.
const WebhookSecretHeader = "X-Webhook-Secret"

// AuthHandler receives account lifecycle events from the identity provider.
type AuthHandler struct {
	users  *services.UserService
	secret string
	log    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. An empty secret rejects every event.
func NewAuthHandler(users *services.UserService, secret string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, log: log}
}

// RegisterAuthRoutes registers the webhook on an unauthenticated group.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/webhooks/auth", h.HandleAuthEvent)
}

func (h *AuthHandler) HandleAuthEvent(c echo.Context) error {
	given := c.Request().Header.Get(WebhookSecretHeader)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
		return apperrors.Unauthorized("invalid webhook secret")
	}

	var ev models.AuthEvent
	if err := bindAndValidate(c, &ev); err != nil {
		return err
	}
	if err := h.users.SyncUser(c.Request().Context(), ev); err != nil {
		return err
	}

	h.log.Info("identity event applied", zap.String("type", ev.Type), zap.String("user_id", ev.User.ID))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
