package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description  string     `gorm:"size:1000" json:"description"`
	IsRestricted bool       `gorm:"not null;default:false" json:"is_restricted"`
	IsVerified   bool       `gorm:"not null;default:false" json:"is_verified"`
	CreatedByID  *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RequiresAccess reports whether posting needs an approved access request.
func (c *Category) RequiresAccess() bool {
	return c.IsVerified && c.IsRestricted
}

// CategoryFollow links a user to a category whose posts appear in their feed.
type CategoryFollow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_follows_user_category,priority:1" json:"user_id"`
	CategoryID uint      `gorm:"not null;uniqueIndex:idx_category_follows_user_category,priority:2;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
