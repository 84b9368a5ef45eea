package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationReply   NotificationType = "reply"
	NotificationFollow  NotificationType = "follow"
	NotificationMention NotificationType = "mention"
)

// Notification is addressed to UserID and caused by ActionUserID.
type Notification struct {
	ID           string           `json:"id" gorm:"primaryKey;size:36"`
	UserID       string           `json:"userId" gorm:"size:128;not null;index:idx_notification_recipient_read;index:idx_notification_dedup"`
	ActionUserID string           `json:"actionUserId" gorm:"size:128;not null;index:idx_notification_dedup"`
	ActionUser   *User            `json:"actionUser,omitempty" gorm:"foreignKey:ActionUserID"`
	Type         NotificationType `json:"type" gorm:"size:20;not null;index:idx_notification_dedup"`
	PhotoID      *string          `json:"photoId" gorm:"size:36;index"`
	CommentID    *string          `json:"commentId" gorm:"size:36;index"`
	IsRead       bool             `json:"isRead" gorm:"not null;default:false;index:idx_notification_recipient_read"`
	Message      string           `json:"message"`
	CreatedAt    time.Time        `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
