package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor"`
}

func enrichNotifications(notifications []models.Notification) []EnrichedNotification {
	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if n.ActionUser != nil {
			actor := n.ActionUser.ToCompact()
			enriched[i].Actor = &actor
		}
		enriched[i].ActionUser = nil
	}
	return enriched
}

// GetNotifications pages the caller's notifications, most recently touched first.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	actorID := middleware.ActorID(c)
	p := parsePage(c)

	notifications, total, err := h.notificationRepository.GetByRecipientID(ctx, actorID, c.QueryParam("unread") == "true", p.Offset(), p.Limit)
	if err != nil {
		return apperrors.Wrapf(err, "list notifications")
	}
	unread, err := h.notificationRepository.GetUnreadCount(ctx, actorID)
	if err != nil {
		return apperrors.Wrapf(err, "count unread notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": enrichNotifications(notifications),
			"unreadCount":   unread,
		},
		"meta": pageMeta(p, total),
	})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), middleware.ActorID(c))
	if err != nil {
		return apperrors.Wrapf(err, "count unread notifications")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "unreadCount": count})
}

// MarkAsRead only touches the caller's own notifications; anything else is a 404.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	updated, err := h.notificationRepository.MarkAsRead(c.Request().Context(), middleware.ActorID(c), c.Param("id"))
	if err != nil {
		return apperrors.Wrapf(err, "mark notification read")
	}
	if !updated {
		return apperrors.NotFound("notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	n, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), middleware.ActorID(c))
	if err != nil {
		return apperrors.Wrapf(err, "mark notifications read")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "updated": n})
}
