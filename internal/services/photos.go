package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultMaxUploadBytes applies when no upload limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PhotoService manages photo uploads, edits and deletion.
type PhotoService struct {
	db       *gorm.DB
	store    storage.ImageStore
	users    *UserService
	maxBytes int64
	log      *zap.Logger
}

func NewPhotoService(db *gorm.DB, store storage.ImageStore, users *UserService, maxBytes int64, log *zap.Logger) *PhotoService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &PhotoService{db: db, store: store, users: users, maxBytes: maxBytes, log: log}
}

// Upload stores the image and records a photo owned by the actor.
func (s *PhotoService) Upload(ctx context.Context, actorID string, file Upload, meta models.PhotoMeta) (*models.Photo, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, apperrors.BadRequest("image uploads are not configured")
	}
	if file.Body == nil || file.Size <= 0 {
		return nil, apperrors.Validation("image", "is required")
	}
	if file.Size > s.maxBytes {
		return nil, apperrors.Validation("image", fmt.Sprintf("must be at most %d bytes", s.maxBytes))
	}
	contentType, ext, ok := storage.ResolveImageType(file.Filename, file.ContentType)
	if !ok {
		return nil, apperrors.Validation("image", "must be a jpeg, png, gif or webp image")
	}

	key := fmt.Sprintf("photos/%s/%s%s", actorID, uuid.NewString(), ext)
	stored, err := s.store.Put(ctx, key, contentType, file.Body, file.Size)
	if err != nil {
		return nil, apperrors.Wrapf(err, "store image")
	}

	photo := &models.Photo{
		UserID:      actorID,
		URL:         stored.URL,
		Title:       strings.TrimSpace(meta.Title),
		Description: strings.TrimSpace(meta.Description),
		Tags:        normalizeTags(meta.Tags),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := s.users.EnsureUser(ctx, tx, actorID)
		if err != nil {
			return err
		}
		if err := reposFor(tx).photos.CreatePhoto(ctx, photo); err != nil {
			return err
		}
		photo.User = owner
		return nil
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphaned image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, apperrors.Wrapf(err, "record photo")
	}

	s.log.Info("photo uploaded", zap.String("photo_id", photo.ID), zap.String("user_id", actorID), zap.Int64("size", file.Size))
	return photo, nil
}

// Update edits title, description and tags. Only the owner may edit.
func (s *PhotoService) Update(ctx context.Context, actorID, photoID string, meta models.PhotoMeta) (*models.Photo, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var photo *models.Photo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		var err error
		if photo, err = r.photos.GetPhotoByID(ctx, photoID); err != nil {
			return lookup(err, "photo")
		}
		if photo.UserID != actorID {
			return apperrors.Forbidden("you can only edit your own photos")
		}

		photo.Title = strings.TrimSpace(meta.Title)
		photo.Description = strings.TrimSpace(meta.Description)
		photo.Tags = normalizeTags(meta.Tags)
		return r.photos.UpdatePhoto(ctx, photo)
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "update photo %s", photoID)
	}
	return photo, nil
}

// Delete removes the photo with its likes, comments and notifications. The stored
// image is left in place.
func (s *PhotoService) Delete(ctx context.Context, actorID, photoID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		photo, err := r.photos.GetPhotoByID(ctx, photoID)
		if err != nil {
			return lookup(err, "photo")
		}
		if photo.UserID != actorID {
			return apperrors.Forbidden("you can only delete your own photos")
		}
		return deletePhotoRows(ctx, r, photoID)
	})
	if err != nil {
		return apperrors.Wrapf(err, "delete photo %s", photoID)
	}
	s.log.Info("photo deleted", zap.String("photo_id", photoID), zap.String("user_id", actorID))
	return nil
}

// normalizeTags lowercases, trims and deduplicates tags, keeping their order.
func normalizeTags(tags []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
