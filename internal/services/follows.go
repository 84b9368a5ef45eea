package services

import (
	"context"

	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowResult is the relationship after a follow or unfollow.
type FollowResult struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
}

// FollowService toggles follow relationships.
type FollowService struct {
	db       *gorm.DB
	users    *UserService
	notifier *notify.Notifier
	log      *zap.Logger
}

func NewFollowService(db *gorm.DB, users *UserService, notifier *notify.Notifier, log *zap.Logger) *FollowService {
	return &FollowService{db: db, users: users, notifier: notifier, log: log}
}

// Follow makes actorID follow targetID and notifies the target.
func (s *FollowService) Follow(ctx context.Context, actorID, targetID string) (*FollowResult, error) {
	if err := checkPair(actorID, targetID, "cannot follow yourself"); err != nil {
		return nil, err
	}

	res := &FollowResult{Following: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)

		if _, err := r.users.GetUserByID(ctx, targetID); err != nil {
			return lookup(err, "user")
		}
		actor, err := s.users.EnsureUser(ctx, tx, actorID)
		if err != nil {
			return err
		}

		already, err := r.follows.IsFollowing(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if already {
			return apperrors.Conflict("already following this user")
		}
		created, err := r.follows.CreateFollowIfAbsent(ctx, &models.Follow{FollowerID: actorID, FollowingID: targetID})
		if err != nil {
			return err
		}
		if !created {
			return apperrors.Conflict("already following this user")
		}

		s.notifier.Notify(ctx, tx, notify.Event{
			Type:        models.NotificationFollow,
			RecipientID: targetID,
			ActorID:     actorID,
			Message:     notify.FollowMessage(displayName(actor)),
		})

		res.FollowersCount, err = r.follows.GetFollowersCount(ctx, targetID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "follow user %s", targetID)
	}
	return res, nil
}

// Unfollow removes the relationship and its follow notification.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID string) (*FollowResult, error) {
	if err := checkPair(actorID, targetID, "cannot unfollow yourself"); err != nil {
		return nil, err
	}

	res := &FollowResult{Following: false}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)

		removed, err := r.follows.DeleteFollow(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			return apperrors.Conflict("not following this user")
		}

		s.notifier.Retract(ctx, tx, notify.Scope{
			Type:        models.NotificationFollow,
			ActorID:     actorID,
			RecipientID: targetID,
		})

		res.FollowersCount, err = r.follows.GetFollowersCount(ctx, targetID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "unfollow user %s", targetID)
	}
	return res, nil
}

// IsFollowing reports whether actorID follows targetID. Lookup failures read as false.
func (s *FollowService) IsFollowing(ctx context.Context, actorID, targetID string) bool {
	if actorID == "" || targetID == "" || actorID == targetID {
		return false
	}
	following, err := reposFor(s.db).follows.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		s.log.Warn("follow status lookup failed",
			zap.String("follower_id", actorID),
			zap.String("following_id", targetID),
			zap.Error(err),
		)
		return false
	}
	return following
}

func checkPair(actorID, targetID, selfMessage string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	if targetID == "" {
		return apperrors.Validation("userId", "is required")
	}
	if actorID == targetID {
		return apperrors.Conflict(selfMessage)
	}
	return nil
}
