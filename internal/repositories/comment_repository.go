package repositories

import (
	"context"

	"github.com/rijalsawan/photography-sub000/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetTopLevelByPhotoID(ctx context.Context, photoID string, offset, limit int) ([]models.Comment, int64, error)
	GetReplyIDs(ctx context.Context, parentID string) ([]string, error)
	GetReplies(ctx context.Context, parentID string) ([]models.Comment, error)
	GetCommentsCountByPhotoID(ctx context.Context, photoID string) (int64, error)
	GetPhotoIDsCommentedBy(ctx context.Context, userID string) ([]string, error)
	GetIDsByUserID(ctx context.Context, userID string) ([]string, error)
	DeleteComments(ctx context.Context, ids []string) (int64, error)
	DeleteRepliesTo(ctx context.Context, parentIDs []string) (int64, error)
	DeleteByPhotoID(ctx context.Context, photoID string) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User", "Replies").Create(comment).Error
}

// GetCommentByID retrieves a comment with its author.
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetTopLevelByPhotoID pages top-level comments newest first, each with its replies
// oldest first.
func (r *PostgresCommentRepository) GetTopLevelByPhotoID(ctx context.Context, photoID string, offset, limit int) ([]models.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("photo_id = ? AND parent_id IS NULL", photoID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := q.Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Replies.User").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&comments).Error
	return comments, total, err
}

func (r *PostgresCommentRepository) GetReplyIDs(ctx context.Context, parentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("parent_id = ?", parentID).Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresCommentRepository) GetReplies(ctx context.Context, parentID string) ([]models.Comment, error) {
	var replies []models.Comment
	err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("created_at ASC").Find(&replies).Error
	return replies, err
}

// GetCommentsCountByPhotoID counts comments and replies.
func (r *PostgresCommentRepository) GetCommentsCountByPhotoID(ctx context.Context, photoID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("photo_id = ?", photoID).Count(&count).Error
	return count, err
}

func (r *PostgresCommentRepository) GetPhotoIDsCommentedBy(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("user_id = ?", userID).Distinct().Pluck("photo_id", &ids).Error
	return ids, err
}

func (r *PostgresCommentRepository) GetIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresCommentRepository) DeleteComments(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}

func (r *PostgresCommentRepository) DeleteRepliesTo(ctx context.Context, parentIDs []string) (int64, error) {
	if len(parentIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("parent_id IN ?", parentIDs).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}

func (r *PostgresCommentRepository) DeleteByPhotoID(ctx context.Context, photoID string) error {
	// Replies first so the parent_id foreign key is never left dangling.
	if err := r.db.WithContext(ctx).Where("photo_id = ? AND parent_id IS NOT NULL", photoID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("photo_id = ?", photoID).Delete(&models.Comment{}).Error
}
