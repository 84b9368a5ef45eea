package repositories

import (
	"context"
	"strings"

	"github.com/rijalsawan/photography-sub000/internal/models"
	"gorm.io/gorm"
)

// PhotoRepository defines the interface for photo data operations
type PhotoRepository interface {
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GetPhotoByID(ctx context.Context, id string) (*models.Photo, error)
	GetPhotosByUserID(ctx context.Context, userID string, offset, limit int) ([]models.Photo, int64, error)
	GetFeed(ctx context.Context, authorIDs []string, offset, limit int) ([]models.Photo, int64, error)
	SearchPhotos(ctx context.Context, query string, offset, limit int) ([]models.Photo, int64, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	ListIDs(ctx context.Context) ([]string, error)
	ListIDsByUserID(ctx context.Context, userID string) ([]string, error)
	UpdatePhoto(ctx context.Context, photo *models.Photo) error
	DeletePhoto(ctx context.Context, id string) error
	IncrementLikeCount(ctx context.Context, id string) error
	DecrementLikeCount(ctx context.Context, id string) error
	IncrementCommentCount(ctx context.Context, id string) error
	DecrementCommentCount(ctx context.Context, id string, n int) error
	SetCounters(ctx context.Context, id string, likeCount, commentCount int64) error
	GetCounters(ctx context.Context, id string) (likeCount, commentCount int, err error)
}

// PostgresPhotoRepository implements PhotoRepository for PostgreSQL
type PostgresPhotoRepository struct {
	db *gorm.DB
}

// NewPostgresPhotoRepository creates a new PostgresPhotoRepository
func NewPostgresPhotoRepository(db *gorm.DB) *PostgresPhotoRepository {
	return &PostgresPhotoRepository{db: db}
}

func (r *PostgresPhotoRepository) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Omit("User").Create(photo).Error
}

// GetPhotoByID loads a photo with its author.
func (r *PostgresPhotoRepository) GetPhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&photo).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *PostgresPhotoRepository) GetPhotosByUserID(ctx context.Context, userID string, offset, limit int) ([]models.Photo, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&models.Photo{}).Where("user_id = ?", userID), offset, limit)
}

// GetFeed returns photos newest first. A nil authorIDs means every author.
func (r *PostgresPhotoRepository) GetFeed(ctx context.Context, authorIDs []string, offset, limit int) ([]models.Photo, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Photo{})
	if authorIDs != nil {
		if len(authorIDs) == 0 {
			return []models.Photo{}, 0, nil
		}
		q = q.Where("user_id IN ?", authorIDs)
	}
	return r.page(q, offset, limit)
}

// SearchPhotos matches title, description or tags (case-insensitive substring).
func (r *PostgresPhotoRepository) SearchPhotos(ctx context.Context, query string, offset, limit int) ([]models.Photo, int64, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	q := r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(CAST(tags AS TEXT)) LIKE ?", pattern, pattern, pattern)
	return r.page(q, offset, limit)
}

func (r *PostgresPhotoRepository) page(q *gorm.DB, offset, limit int) ([]models.Photo, int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var photos []models.Photo
	err := q.Preload("User").Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&photos).Error
	return photos, total, err
}

func (r *PostgresPhotoRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Photo{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresPhotoRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Photo{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresPhotoRepository) ListIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Photo{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresPhotoRepository) UpdatePhoto(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Model(photo).Select("Title", "Description", "Tags", "UpdatedAt").Updates(photo).Error
}

func (r *PostgresPhotoRepository) DeletePhoto(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Photo{}).Error
}

func (r *PostgresPhotoRepository) IncrementLikeCount(ctx context.Context, id string) error {
	return r.adjust(ctx, id, "like_count", gorm.Expr("like_count + 1"))
}

// DecrementLikeCount never takes the counter below zero.
func (r *PostgresPhotoRepository) DecrementLikeCount(ctx context.Context, id string) error {
	return r.adjust(ctx, id, "like_count", clampedSub("like_count", 1))
}

func (r *PostgresPhotoRepository) IncrementCommentCount(ctx context.Context, id string) error {
	return r.adjust(ctx, id, "comment_count", gorm.Expr("comment_count + 1"))
}

// DecrementCommentCount subtracts n in a single update, clamped at zero.
func (r *PostgresPhotoRepository) DecrementCommentCount(ctx context.Context, id string, n int) error {
	if n <= 0 {
		return nil
	}
	return r.adjust(ctx, id, "comment_count", clampedSub("comment_count", n))
}

func (r *PostgresPhotoRepository) SetCounters(ctx context.Context, id string, likeCount, commentCount int64) error {
	return r.db.WithContext(ctx).Model(&models.Photo{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"like_count": likeCount, "comment_count": commentCount}).Error
}

// GetCounters reads the stored counters without loading the rest of the row.
func (r *PostgresPhotoRepository) GetCounters(ctx context.Context, id string) (int, int, error) {
	var row struct {
		LikeCount    int
		CommentCount int
	}
	err := r.db.WithContext(ctx).Model(&models.Photo{}).
		Select("like_count", "comment_count").
		Where("id = ?", id).
		Take(&row).Error
	return row.LikeCount, row.CommentCount, err
}

func (r *PostgresPhotoRepository) adjust(ctx context.Context, id, column string, expr any) error {
	res := r.db.WithContext(ctx).Model(&models.Photo{}).Where("id = ?", id).UpdateColumn(column, expr)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func clampedSub(column string, n int) any {
	return gorm.Expr("CASE WHEN "+column+" > ? THEN "+column+" - ? ELSE 0 END", n, n)
}
