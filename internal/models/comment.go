package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is attached to a photo. ParentID set means the comment is a reply; replies
// only ever point at top-level comments.
type Comment struct {
	ID       string    `json:"id" gorm:"primaryKey;size:36"`
	UserID   string    `json:"userId" gorm:"size:128;not null;index"`
	User     *User     `json:"author,omitempty" gorm:"foreignKey:UserID"`
	PhotoID  string    `json:"photoId" gorm:"size:36;not null;index"`
	ParentID *string   `json:"parentId" gorm:"size:36;index"`
	Replies  []Comment `json:"replies,omitempty" gorm:"foreignKey:ParentID"`
	Text     string    `json:"text" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsReply reports whether the comment hangs off another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// CreateCommentRequest is the body of comment and reply creation.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}
