package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
	"github.com/rijalsawan/photography-sub000/internal/services"
)

// CommentHandler handles HTTP requests related to comments and replies
type CommentHandler struct {
	engagement        *services.EngagementService
	commentRepository repositories.CommentRepository
	photoRepository   repositories.PhotoRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engagement *services.EngagementService, commentRepo repositories.CommentRepository, photoRepo repositories.PhotoRepository) *CommentHandler {
	return &CommentHandler{
		engagement:        engagement,
		commentRepository: commentRepo,
		photoRepository:   photoRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/photos/:id/comments", h.GetComments)
	g.POST("/photos/:id/comments", h.CreateComment)
	g.GET("/comments/:id/replies", h.GetReplies)
	g.POST("/comments/:id/replies", h.CreateReply)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.DELETE("/comments/:id/replies/:replyId", h.DeleteReply)
}

// GetComments pages the top-level comments of a photo, each with its replies.
func (h *CommentHandler) GetComments(c echo.Context) error {
	ctx := c.Request().Context()
	photoID := c.Param("id")

	if _, err := h.photoRepository.GetPhotoByID(ctx, photoID); err != nil {
		return notFoundOr(err, "photo")
	}

	p := parsePage(c)
	comments, total, err := h.commentRepository.GetTopLevelByPhotoID(ctx, photoID, p.Offset(), p.Limit)
	if err != nil {
		return apperrors.Wrapf(err, "list comments")
	}
	return respondPage(c, "comments", comments, p, total)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.engagement.CreateComment(c.Request().Context(), middleware.ActorID(c), c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, res)
}

func (h *CommentHandler) GetReplies(c echo.Context) error {
	replies, err := h.commentRepository.GetReplies(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperrors.Wrapf(err, "list replies")
	}
	return respondData(c, http.StatusOK, echo.Map{"replies": replies})
}

func (h *CommentHandler) CreateReply(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.engagement.CreateReply(c.Request().Context(), middleware.ActorID(c), c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, res)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	res, err := h.engagement.DeleteComment(c.Request().Context(), middleware.ActorID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, res)
}

func (h *CommentHandler) DeleteReply(c echo.Context) error {
	res, err := h.engagement.DeleteReply(c.Request().Context(), middleware.ActorID(c), c.Param("id"), c.Param("replyId"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, res)
}
