package services

import (
	"context"
	"errors"

	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Counters is the recomputed state of one photo.
type Counters struct {
	PhotoID      string `json:"photoId"`
	LikeCount    int64  `json:"likeCount"`
	CommentCount int64  `json:"commentCount"`
	Changed      bool   `json:"changed"`
}

// CounterService repairs the denormalised photo counters from the relations.
type CounterService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCounterService(db *gorm.DB, log *zap.Logger) *CounterService {
	return &CounterService{db: db, log: log}
}

// Recount recomputes likeCount and commentCount of one photo.
func (s *CounterService) Recount(ctx context.Context, photoID string) (*Counters, error) {
	if photoID == "" {
		return nil, apperrors.Validation("photoId", "is required")
	}
	var out *Counters
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = s.recount(ctx, reposFor(tx), photoID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "recount photo %s", photoID)
	}
	return out, nil
}

// RecountAll recomputes every photo and returns how many had drifted.
func (s *CounterService) RecountAll(ctx context.Context) (int, error) {
	ids, err := reposFor(s.db).photos.ListIDs(ctx)
	if err != nil {
		return 0, apperrors.Wrapf(err, "list photos")
	}

	changed := 0
	for _, id := range ids {
		c, err := s.Recount(ctx, id)
		if err != nil {
			return changed, err
		}
		if c.Changed {
			changed++
		}
	}
	s.log.Info("photo counters recounted", zap.Int("photos", len(ids)), zap.Int("changed", changed))
	return changed, nil
}

// recountIn repairs photoIDs inside an existing transaction. Photos that no longer
// exist are skipped.
func (s *CounterService) recountIn(ctx context.Context, tx *gorm.DB, photoIDs []string) error {
	r := reposFor(tx)
	for _, id := range photoIDs {
		if _, err := s.recount(ctx, r, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}

func (s *CounterService) recount(ctx context.Context, r repos, photoID string) (*Counters, error) {
	likes, comments, err := r.photos.GetCounters(ctx, photoID)
	if err != nil {
		return nil, lookup(err, "photo")
	}

	likeCount, err := r.likes.GetLikesCountByPhotoID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	commentCount, err := r.comments.GetCommentsCountByPhotoID(ctx, photoID)
	if err != nil {
		return nil, err
	}

	out := &Counters{
		PhotoID:      photoID,
		LikeCount:    likeCount,
		CommentCount: commentCount,
		Changed:      int64(likes) != likeCount || int64(comments) != commentCount,
	}
	if !out.Changed {
		return out, nil
	}
	if err := r.photos.SetCounters(ctx, photoID, likeCount, commentCount); err != nil {
		return nil, err
	}
	s.log.Info("photo counters drifted",
		zap.String("photo_id", photoID),
		zap.Int("like_count_was", likes),
		zap.Int64("like_count", likeCount),
		zap.Int("comment_count_was", comments),
		zap.Int64("comment_count", commentCount),
	)
	return out, nil
}
