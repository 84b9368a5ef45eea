package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Photo is an uploaded image. LikeCount and CommentCount are maintained by the
// mutation services in the same transaction as the Like/Comment rows.
type Photo struct {
	ID           string                      `json:"id" gorm:"primaryKey;size:36"`
	UserID       string                      `json:"userId" gorm:"index;size:128;not null"`
	User         *User                       `json:"author,omitempty" gorm:"foreignKey:UserID"`
	URL          string                      `json:"url" gorm:"not null"`
	Title        string                      `json:"title"`
	Description  string                      `json:"description"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	LikeCount    int                         `json:"likeCount" gorm:"not null;default:0"`
	CommentCount int                         `json:"commentCount" gorm:"not null;default:0"`
	CreatedAt    time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PhotoMeta carries the editable photo fields of upload and update requests.
type PhotoMeta struct {
	Title       string   `json:"title" form:"title" validate:"max=120"`
	Description string   `json:"description" form:"description" validate:"max=2000"`
	Tags        []string `json:"tags" form:"tags" validate:"max=20,dive,min=1,max=40"`
}

// FeedPhoto is a photo enriched with the caller's like state.
type FeedPhoto struct {
	Photo
	IsLiked bool `json:"isLiked"`
}
