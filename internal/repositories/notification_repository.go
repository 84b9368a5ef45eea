package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/rijalsawan/photography-sub000/internal/models"
	"gorm.io/gorm"
)

// NotificationFilter selects notifications by their natural key. Empty fields are not
// constrained; nil PhotoID/CommentID leave those columns unconstrained too.
type NotificationFilter struct {
	RecipientID string
	ActorID     string
	Type        models.NotificationType
	PhotoID     *string
	CommentID   *string
}

func (f NotificationFilter) apply(q *gorm.DB) *gorm.DB {
	if f.RecipientID != "" {
		q = q.Where("user_id = ?", f.RecipientID)
	}
	if f.ActorID != "" {
		q = q.Where("action_user_id = ?", f.ActorID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.PhotoID != nil {
		q = q.Where("photo_id = ?", *f.PhotoID)
	}
	if f.CommentID != nil {
		q = q.Where("comment_id = ?", *f.CommentID)
	}
	return q
}

// ErrUnscopedDelete guards DeleteMatching against wiping unrelated rows.
var ErrUnscopedDelete = errors.New("notification delete requires actor and type")

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	FindLatest(ctx context.Context, filter NotificationFilter, since time.Time) (*models.Notification, error)
	Refresh(ctx context.Context, id, message string, commentID *string, at time.Time) error
	DeleteMatching(ctx context.Context, filter NotificationFilter) (int64, error)
	GetByRecipientID(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, recipientID, notificationID string) (bool, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByPhotoID(ctx context.Context, photoID string) error
	DeleteByCommentIDs(ctx context.Context, commentIDs []string) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Omit("ActionUser").Create(notification).Error
}

// FindLatest returns the newest notification matching filter created at or after since,
// or nil when there is none.
func (r *postgresNotificationRepository) FindLatest(ctx context.Context, filter NotificationFilter, since time.Time) (*models.Notification, error) {
	var n models.Notification
	err := filter.apply(r.db.WithContext(ctx).Model(&models.Notification{})).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Refresh resurfaces an existing notification as unread with a new message.
func (r *postgresNotificationRepository) Refresh(ctx context.Context, id, message string, commentID *string, at time.Time) error {
	updates := map[string]any{
		"message":    message,
		"is_read":    false,
		"updated_at": at,
	}
	if commentID != nil {
		updates["comment_id"] = *commentID
	}
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).UpdateColumns(updates).Error
}

func (r *postgresNotificationRepository) DeleteMatching(ctx context.Context, filter NotificationFilter) (int64, error) {
	if filter.ActorID == "" || filter.Type == "" {
		return 0, ErrUnscopedDelete
	}
	res := filter.apply(r.db.WithContext(ctx)).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := q.Preload("ActionUser").
		Order("updated_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

// MarkAsRead only touches notifications addressed to recipientID.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, recipientID, notificationID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, recipientID).
		UpdateColumn("is_read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", recipientID, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}

// DeleteByUserID removes notifications the user received or caused.
func (r *postgresNotificationRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ? OR action_user_id = ?", userID, userID).Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) DeleteByPhotoID(ctx context.Context, photoID string) error {
	return r.db.WithContext(ctx).Where("photo_id = ?", photoID).Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) DeleteByCommentIDs(ctx context.Context, commentIDs []string) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("comment_id IN ?", commentIDs).Delete(&models.Notification{}).Error
}
