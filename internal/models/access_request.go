package models

import (
	"time"

	"github.com/google/uuid"
)

type AccessRequestStatus string

const (
	AccessPending  AccessRequestStatus = "Pending"
	AccessApproved AccessRequestStatus = "Approved"
	AccessRejected AccessRequestStatus = "Rejected"
)

// CategoryAccessRequest is the single request row per (user, category). A
// rejected request is reused on resubmission rather than appended.
type CategoryAccessRequest struct {
	ID                     uint                `gorm:"primaryKey" json:"id"`
	UserID                 uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_access_requests_user_category,priority:1" json:"user_id"`
	User                   *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CategoryID             uint                `gorm:"not null;uniqueIndex:idx_access_requests_user_category,priority:2;index" json:"category_id"`
	Category               *Category           `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Reason                 string              `gorm:"size:500;not null" json:"reason"`
	Status                 AccessRequestStatus `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	SupportingDocumentPath *string             `gorm:"size:1000" json:"supporting_document_path,omitempty"`
	ReviewedByID           *uuid.UUID          `gorm:"type:uuid" json:"reviewed_by_id,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}
