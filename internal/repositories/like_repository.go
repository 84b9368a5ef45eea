package repositories

import (
	"context"

	"github.com/rijalsawan/photography-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLikeIfAbsent(ctx context.Context, like *models.Like) (bool, error)
	DeleteLike(ctx context.Context, photoID, userID string) (bool, error)
	HasUserLikedPhoto(ctx context.Context, photoID, userID string) (bool, error)
	GetLikedPhotoIDs(ctx context.Context, userID string, photoIDs []string) (map[string]bool, error)
	GetLikesCountByPhotoID(ctx context.Context, photoID string) (int64, error)
	GetPhotoIDsLikedBy(ctx context.Context, userID string) ([]string, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByPhotoID(ctx context.Context, photoID string) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLikeIfAbsent inserts the like unless (user, photo) already exists. It reports
// whether a row was written, so a concurrent duplicate is detected without an error.
func (r *PostgresLikeRepository) CreateLikeIfAbsent(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "photo_id"}},
		DoNothing: true,
	}).Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteLike reports whether a row was removed.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, photoID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("photo_id = ? AND user_id = ?", photoID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasUserLikedPhoto checks if a user has liked a specific photo
func (r *PostgresLikeRepository) HasUserLikedPhoto(ctx context.Context, photoID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("photo_id = ? AND user_id = ?", photoID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLikedPhotoIDs returns the subset of photoIDs liked by userID.
func (r *PostgresLikeRepository) GetLikedPhotoIDs(ctx context.Context, userID string, photoIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(photoIDs))
	if userID == "" || len(photoIDs) == 0 {
		return liked, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND photo_id IN ?", userID, photoIDs).
		Pluck("photo_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *PostgresLikeRepository) GetLikesCountByPhotoID(ctx context.Context, photoID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("photo_id = ?", photoID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresLikeRepository) GetPhotoIDsLikedBy(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ?", userID).Distinct().Pluck("photo_id", &ids).Error
	return ids, err
}

func (r *PostgresLikeRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) DeleteByPhotoID(ctx context.Context, photoID string) error {
	return r.db.WithContext(ctx).Where("photo_id = ?", photoID).Delete(&models.Like{}).Error
}
