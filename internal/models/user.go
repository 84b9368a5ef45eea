package models

import "time"

// User mirrors an identity-provider account. ID is the provider's user id.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:128"`
	Name      string    `json:"name"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email     string    `json:"email,omitempty" gorm:"index"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	IsPrivate bool      `json:"isPrivate" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserCompact is the author/actor shape embedded in other payloads.
type UserCompact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, Username: u.Username, Avatar: u.Avatar}
}

// UserProfile is a user with follow counts computed on read.
type UserProfile struct {
	User
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
	PhotosCount    int64 `json:"photosCount"`
	IsFollowing    bool  `json:"isFollowing"`
}

// UpdateProfileRequest defines the request body for editing the caller's profile.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=80"`
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=300"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,url"`
	IsPrivate *bool   `json:"isPrivate,omitempty"`
}
