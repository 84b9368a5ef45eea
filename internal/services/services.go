// Package services implements the mutations of the API. Every mutation runs in one
// database transaction that covers the primary rows, the photo counters and the
// notification side effects.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
	"gorm.io/gorm"
)

// MaxCommentRunes bounds comment and reply text.
const MaxCommentRunes = 1000

// UserDirectory looks up identity-provider profiles.
type UserDirectory interface {
	LookupUser(ctx context.Context, id string) (*models.Identity, error)
}

// repos binds every repository to the same handle, usually a transaction.
type repos struct {
	users         repositories.UserRepository
	photos        repositories.PhotoRepository
	likes         repositories.LikeRepository
	comments      repositories.CommentRepository
	follows       repositories.FollowRepository
	notifications repositories.NotificationRepository
}

func reposFor(db *gorm.DB) repos {
	return repos{
		users:         repositories.NewPostgresUserRepository(db),
		photos:        repositories.NewPostgresPhotoRepository(db),
		likes:         repositories.NewPostgresLikeRepository(db),
		comments:      repositories.NewPostgresCommentRepository(db),
		follows:       repositories.NewPostgresFollowRepository(db),
		notifications: repositories.NewPostgresNotificationRepository(db),
	}
}

// lookup turns gorm.ErrRecordNotFound into a 404 for resource.
func lookup(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource)
	}
	return apperrors.Wrapf(err, "load %s", resource)
}

func requireActor(actorID string) error {
	if actorID == "" {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

// commentText trims and validates comment input.
func commentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.Validation("text", "is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentRunes {
		return "", apperrors.Validation("text", "must be at most 1000 characters")
	}
	return text, nil
}

func displayName(u *models.User) string {
	if u == nil {
		return "Someone"
	}
	if u.Username != "" {
		return u.Username
	}
	if u.Name != "" {
		return u.Name
	}
	return "Someone"
}
