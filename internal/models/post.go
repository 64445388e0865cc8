package models

import (
	"time"

	"github.com/google/uuid"
)

const PostStatusPublished = "Published"

const (
	MediaTypeImage = "Image"
	MediaTypeVideo = "Video"
)

type Post struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Content    string      `gorm:"type:text" json:"content"`
	Status     string      `gorm:"size:20;not null;default:'Published'" json:"status"`
	UserID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CategoryID uint        `gorm:"not null;index" json:"category_id"`
	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Media      []PostMedia `gorm:"foreignKey:PostID" json:"media"`
	Likes      []PostLike  `gorm:"foreignKey:PostID" json:"likes"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// PostMedia is one uploaded image or video attached to a post.
type PostMedia struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	MediaPath string    `gorm:"size:1000;not null" json:"media_path"`
	MediaType string    `gorm:"size:10;not null" json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
}

type PostLike struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	PostID  uint      `gorm:"not null;uniqueIndex:idx_post_likes_post_user,priority:1" json:"post_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_likes_post_user,priority:2;index" json:"user_id"`
	LikedAt time.Time `gorm:"not null" json:"liked_at"`
}

type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	PostID          uint      `gorm:"not null;index" json:"post_id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
