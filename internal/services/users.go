package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)

var usernameStrip = regexp.MustCompile(`[^a-z0-9_.]`)

// UserService owns the local mirror of identity-provider accounts.
type UserService struct {
	db        *gorm.DB
	directory UserDirectory
	counters  *CounterService
	log       *zap.Logger
}

// NewUserService builds the service. directory may be nil, in which case lazily
// created users get placeholder profiles.
func NewUserService(db *gorm.DB, directory UserDirectory, counters *CounterService, log *zap.Logger) *UserService {
	return &UserService{db: db, directory: directory, counters: counters, log: log}
}

// EnsureUser returns the user row for id, creating it on first sight. tx must be the
// caller's transaction (or the plain pool).
func (s *UserService) EnsureUser(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	if err := requireActor(id); err != nil {
		return nil, err
	}
	r := reposFor(tx)

	user, err := r.users.GetUserByID(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrapf(err, "load user %s", id)
	}

	identity := &models.Identity{ID: id}
	if s.directory != nil {
		found, err := s.directory.LookupUser(ctx, id)
		if err != nil {
			s.log.Warn("identity lookup failed, using placeholder profile", zap.String("user_id", id), zap.Error(err))
		} else if found != nil {
			identity = found
			identity.ID = id
		}
	}

	return s.createFromIdentity(ctx, tx, identity)
}

func (s *UserService) createFromIdentity(ctx context.Context, tx *gorm.DB, identity *models.Identity) (*models.User, error) {
	r := reposFor(tx)

	base := identity.Username
	if !usernamePattern.MatchString(base) {
		base = PlaceholderUsername(identity.ID)
	}
	username, err := s.uniqueUsername(ctx, tx, base, identity.ID)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       identity.ID,
		Name:     identity.Name,
		Username: username,
		Email:    identity.Email,
		Avatar:   identity.Avatar,
	}
	if user.Name == "" {
		user.Name = username
	}
	if err := r.users.CreateUser(ctx, user); err != nil {
		return nil, apperrors.Wrapf(err, "create user %s", identity.ID)
	}
	s.log.Info("user created", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// PlaceholderUsername derives user_<first 8 characters of id>.
func PlaceholderUsername(id string) string {
	clean := usernameStrip.ReplaceAllString(strings.ToLower(id), "")
	if len(clean) > 8 {
		clean = clean[:8]
	}
	if clean == "" {
		clean = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return "user_" + clean
}

// uniqueUsername returns base, or base followed by the first free numeric suffix.
func (s *UserService) uniqueUsername(ctx context.Context, tx *gorm.DB, base, ownerID string) (string, error) {
	r := reposFor(tx)
	candidate := base
	for i := 2; i < 100; i++ {
		taken, err := r.users.UsernameTaken(ctx, candidate, ownerID)
		if err != nil {
			return "", apperrors.Wrapf(err, "check username")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
		if len(candidate) > 30 {
			candidate = fmt.Sprintf("%s%d", base[:30-len(fmt.Sprint(i))], i)
		}
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6], nil
}

// GetProfile returns a user with follow and photo counts, computed on read.
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID string) (*models.UserProfile, error) {
	r := reposFor(s.db)

	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "user")
	}

	profile := &models.UserProfile{User: *user}
	if profile.FollowersCount, err = r.follows.GetFollowersCount(ctx, userID); err != nil {
		return nil, apperrors.Wrapf(err, "count followers")
	}
	if profile.FollowingCount, err = r.follows.GetFollowingCount(ctx, userID); err != nil {
		return nil, apperrors.Wrapf(err, "count following")
	}
	if profile.PhotosCount, err = r.photos.CountByUserID(ctx, userID); err != nil {
		return nil, apperrors.Wrapf(err, "count photos")
	}
	if viewerID != "" && viewerID != userID {
		following, err := r.follows.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			s.log.Warn("follow status lookup failed", zap.String("viewer_id", viewerID), zap.Error(err))
		}
		profile.IsFollowing = following
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of req to the caller's profile.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, req models.UpdateProfileRequest) (*models.User, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = s.EnsureUser(ctx, tx, actorID); err != nil {
			return err
		}
		r := reposFor(tx)

		if req.Username != nil {
			username := strings.TrimSpace(*req.Username)
			if !usernamePattern.MatchString(username) {
				return apperrors.Validation("username", "must be 3-30 letters, digits, '_' or '.'")
			}
			taken, err := r.users.UsernameTaken(ctx, username, actorID)
			if err != nil {
				return apperrors.Wrapf(err, "check username")
			}
			if taken {
				return apperrors.Conflict("username already taken")
			}
			user.Username = username
		}
		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.Bio != nil {
			user.Bio = strings.TrimSpace(*req.Bio)
		}
		if req.Avatar != nil {
			user.Avatar = strings.TrimSpace(*req.Avatar)
		}
		if req.IsPrivate != nil {
			user.IsPrivate = *req.IsPrivate
		}

		return r.users.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "update profile %s", actorID)
	}
	return user, nil
}

// SyncUser applies an identity provider webhook event.
func (s *UserService) SyncUser(ctx context.Context, ev models.AuthEvent) error {
	if ev.User.ID == "" {
		return apperrors.Validation("user.id", "is required")
	}

	switch ev.Type {
	case models.AuthEventUserCreated, models.AuthEventUserUpdated:
		return s.upsertIdentity(ctx, &ev.User)
	case models.AuthEventUserDeleted:
		return s.DeleteUser(ctx, ev.User.ID)
	default:
		return apperrors.BadRequest(fmt.Sprintf("unsupported event type %q", ev.Type))
	}
}

func (s *UserService) upsertIdentity(ctx context.Context, identity *models.Identity) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)

		user, err := r.users.GetUserByID(ctx, identity.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_, err = s.createFromIdentity(ctx, tx, identity)
			return err
		}
		if err != nil {
			return err
		}

		if identity.Name != "" {
			user.Name = identity.Name
		}
		if identity.Email != "" {
			user.Email = identity.Email
		}
		if identity.Avatar != "" {
			user.Avatar = identity.Avatar
		}
		if identity.Username != "" && usernamePattern.MatchString(identity.Username) {
			taken, err := r.users.UsernameTaken(ctx, identity.Username, identity.ID)
			if err != nil {
				return err
			}
			if !taken {
				user.Username = identity.Username
			}
		}
		return r.users.UpdateUser(ctx, user)
	})
	return apperrors.Wrapf(err, "sync user %s", identity.ID)
}

// DeleteUser removes the account and everything attached to it, then repairs the
// counters of every other photo the user had liked or commented on.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)

		if _, err := r.users.GetUserByID(ctx, userID); err != nil {
			return lookup(err, "user")
		}

		owned, err := r.photos.ListIDsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		ownedSet := make(map[string]bool, len(owned))
		for _, id := range owned {
			ownedSet[id] = true
		}

		liked, err := r.likes.GetPhotoIDsLikedBy(ctx, userID)
		if err != nil {
			return err
		}
		commented, err := r.comments.GetPhotoIDsCommentedBy(ctx, userID)
		if err != nil {
			return err
		}
		var touched []string
		seen := make(map[string]bool)
		for _, id := range append(liked, commented...) {
			if !ownedSet[id] && !seen[id] {
				seen[id] = true
				touched = append(touched, id)
			}
		}

		for _, photoID := range owned {
			if err := deletePhotoRows(ctx, r, photoID); err != nil {
				return err
			}
		}

		commentIDs, err := r.comments.GetIDsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		var orphaned []string
		for _, id := range commentIDs {
			replies, err := r.comments.GetReplyIDs(ctx, id)
			if err != nil {
				return err
			}
			orphaned = append(orphaned, replies...)
		}
		if err := r.notifications.DeleteByCommentIDs(ctx, orphaned); err != nil {
			return err
		}
		if _, err := r.comments.DeleteRepliesTo(ctx, commentIDs); err != nil {
			return err
		}
		if _, err := r.comments.DeleteComments(ctx, commentIDs); err != nil {
			return err
		}

		if err := r.likes.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := r.follows.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := r.notifications.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := r.users.DeleteUser(ctx, userID); err != nil {
			return err
		}

		return s.counters.recountIn(ctx, tx, touched)
	})
	if err != nil {
		return apperrors.Wrapf(err, "delete user %s", userID)
	}
	s.log.Info("user deleted", zap.String("user_id", userID))
	return nil
}

// deletePhotoRows removes a photo with its likes, comments and notifications.
func deletePhotoRows(ctx context.Context, r repos, photoID string) error {
	if err := r.likes.DeleteByPhotoID(ctx, photoID); err != nil {
		return err
	}
	if err := r.comments.DeleteByPhotoID(ctx, photoID); err != nil {
		return err
	}
	if err := r.notifications.DeleteByPhotoID(ctx, photoID); err != nil {
		return err
	}
	return r.photos.DeletePhoto(ctx, photoID)
}
