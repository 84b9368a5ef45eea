package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
	"github.com/rijalsawan/photography-sub000/internal/services"
	"go.uber.org/zap"
)

// PhotoHandler handles HTTP requests related to photos
type PhotoHandler struct {
	photos           *services.PhotoService
	photoRepository  repositories.PhotoRepository
	userRepository   repositories.UserRepository
	likeRepository   repositories.LikeRepository
	followRepository repositories.FollowRepository
	log              *zap.Logger
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(
	photos *services.PhotoService,
	photoRepo repositories.PhotoRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	followRepo repositories.FollowRepository,
	log *zap.Logger,
) *PhotoHandler {
	return &PhotoHandler{
		photos:           photos,
		photoRepository:  photoRepo,
		userRepository:   userRepo,
		likeRepository:   likeRepo,
		followRepository: followRepo,
		log:              log,
	}
}

// RegisterPhotoRoutes registers photo-related routes
func (h *PhotoHandler) RegisterPhotoRoutes(g *echo.Group) {
	g.POST("/photos", h.UploadPhoto)
	g.GET("/photos/:id", h.GetPhoto)
	g.PUT("/photos/:id", h.UpdatePhoto)
	g.DELETE("/photos/:id", h.DeletePhoto)
	g.GET("/users/:id/photos", h.GetUserPhotos)
}

// UploadPhoto accepts a multipart form with an "image" file and optional title,
// description and comma separated tags.
func (h *PhotoHandler) UploadPhoto(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return apperrors.Validation("image", "is required")
	}
	meta := models.PhotoMeta{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Tags:        splitTags(c.FormValue("tags")),
	}
	if err := c.Validate(&meta); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.BadRequest("could not read uploaded file")
	}
	defer file.Close()

	photo, err := h.photos.Upload(c.Request().Context(), middleware.ActorID(c), services.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	}, meta)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, echo.Map{"photo": photo})
}

func (h *PhotoHandler) GetPhoto(c echo.Context) error {
	ctx := c.Request().Context()
	photo, err := h.photoRepository.GetPhotoByID(ctx, c.Param("id"))
	if err != nil {
		return notFoundOr(err, "photo")
	}
	enriched := enrichPhotos(ctx, h.likeRepository, h.log, middleware.ActorID(c), []models.Photo{*photo})
	return respondData(c, http.StatusOK, echo.Map{"photo": enriched[0]})
}

func (h *PhotoHandler) UpdatePhoto(c echo.Context) error {
	var meta models.PhotoMeta
	if err := bindAndValidate(c, &meta); err != nil {
		return err
	}
	photo, err := h.photos.Update(c.Request().Context(), middleware.ActorID(c), c.Param("id"), meta)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, echo.Map{"photo": photo})
}

func (h *PhotoHandler) DeletePhoto(c echo.Context) error {
	if err := h.photos.Delete(c.Request().Context(), middleware.ActorID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "photo deleted"})
}

// GetUserPhotos lists a user's photos. A private account shows an empty list to
// anyone but the owner and their followers.
func (h *PhotoHandler) GetUserPhotos(c echo.Context) error {
	ctx := c.Request().Context()
	actorID := middleware.ActorID(c)
	userID := c.Param("id")
	p := parsePage(c)

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user")
	}
	if user.IsPrivate && actorID != userID {
		following, err := h.followRepository.IsFollowing(ctx, actorID, userID)
		if err != nil || !following {
			return respondPage(c, "photos", []models.FeedPhoto{}, p, 0)
		}
	}

	photos, total, err := h.photoRepository.GetPhotosByUserID(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		return apperrors.Wrapf(err, "list photos of %s", userID)
	}
	return respondPage(c, "photos", enrichPhotos(ctx, h.likeRepository, h.log, actorID, photos), p, total)
}

// enrichPhotos adds the caller's like state. A failed lookup leaves everything unliked.
func enrichPhotos(ctx context.Context, likes repositories.LikeRepository, log *zap.Logger, actorID string, photos []models.Photo) []models.FeedPhoto {
	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	liked, err := likes.GetLikedPhotoIDs(ctx, actorID, ids)
	if err != nil {
		log.Warn("like state lookup failed", zap.String("user_id", actorID), zap.Error(err))
		liked = map[string]bool{}
	}

	out := make([]models.FeedPhoto, len(photos))
	for i, p := range photos {
		out[i] = models.FeedPhoto{Photo: p, IsLiked: liked[p.ID]}
	}
	return out
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
