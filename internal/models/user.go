package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a feed account. Inactive users are banned and cannot sign in.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Password     string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"size:20;not null;default:'user'" json:"role"`
	DisplayName  string     `gorm:"size:100" json:"display_name"`
	Bio          string     `gorm:"size:500" json:"bio"`
	ProfileImage string     `gorm:"size:500" json:"profile_image"`
	FirstName    string     `gorm:"size:100" json:"first_name,omitempty"`
	LastName     string     `gorm:"size:100" json:"last_name,omitempty"`
	PhoneNumber  string     `gorm:"size:30" json:"-"`
	DateOfBirth  *time.Time `json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
