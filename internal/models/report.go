package models

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "Pending"
	ReportResolved  ReportStatus = "Resolved"
	ReportDismissed ReportStatus = "Dismissed"
)

type ReportTargetType string

const (
	TargetPost     ReportTargetType = "post"
	TargetComment  ReportTargetType = "comment"
	TargetCategory ReportTargetType = "category"
	TargetUser     ReportTargetType = "user"
)

var ErrInvalidTarget = errors.New("invalid report target")

// ReportTarget names the single entity a report complains about. IDs are kept
// in canonical string form so that equal targets compare equal in SQL.
type ReportTarget struct {
	Type ReportTargetType `json:"type"`
	ID   string           `json:"id"`
}

func PostTarget(id uint) ReportTarget {
	return ReportTarget{Type: TargetPost, ID: strconv.FormatUint(uint64(id), 10)}
}

func CommentTarget(id uint) ReportTarget {
	return ReportTarget{Type: TargetComment, ID: strconv.FormatUint(uint64(id), 10)}
}

func CategoryTarget(id uint) ReportTarget {
	return ReportTarget{Type: TargetCategory, ID: strconv.FormatUint(uint64(id), 10)}
}

func UserTarget(id uuid.UUID) ReportTarget {
	return ReportTarget{Type: TargetUser, ID: id.String()}
}

// ParseReportTarget builds a canonical target from untrusted input.
func ParseReportTarget(targetType, id string) (ReportTarget, error) {
	switch ReportTargetType(targetType) {
	case TargetPost, TargetComment, TargetCategory:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil || n == 0 {
			return ReportTarget{}, ErrInvalidTarget
		}
		return ReportTarget{Type: ReportTargetType(targetType), ID: strconv.FormatUint(n, 10)}, nil
	case TargetUser:
		u, err := uuid.Parse(id)
		if err != nil {
			return ReportTarget{}, ErrInvalidTarget
		}
		return UserTarget(u), nil
	}
	return ReportTarget{}, ErrInvalidTarget
}

// EntityID returns the numeric id of a post, comment or category target.
func (t ReportTarget) EntityID() (uint, error) {
	if t.Type == TargetUser {
		return 0, ErrInvalidTarget
	}
	n, err := strconv.ParseUint(t.ID, 10, 64)
	if err != nil {
		return 0, ErrInvalidTarget
	}
	return uint(n), nil
}

func (t ReportTarget) UserID() (uuid.UUID, error) {
	if t.Type != TargetUser {
		return uuid.Nil, ErrInvalidTarget
	}
	return uuid.Parse(t.ID)
}

func (t ReportTarget) Key() string {
	return string(t.Type) + ":" + t.ID
}

// Report is a complaint against exactly one target. A report is never deleted:
// once its content is removed it is Resolved and its TargetID is cleared, but
// TargetType is kept for the audit trail.
type Report struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Reason     string           `gorm:"type:text;not null" json:"reason"`
	Status     ReportStatus     `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	ReporterID uuid.UUID        `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Reporter   *User            `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	TargetType ReportTargetType `gorm:"size:20;not null;index:idx_reports_target,priority:1" json:"target_type"`
	TargetID   *string          `gorm:"size:64;index:idx_reports_target,priority:2" json:"target_id"`
	ResolvedAt *time.Time       `json:"resolved_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Target returns the report's target, or false once the report has been detached.
func (r *Report) Target() (ReportTarget, bool) {
	if r.TargetID == nil {
		return ReportTarget{}, false
	}
	return ReportTarget{Type: r.TargetType, ID: *r.TargetID}, true
}

func (r *Report) SetTarget(t ReportTarget) {
	id := t.ID
	r.TargetType = t.Type
	r.TargetID = &id
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	t, ok := r.Target()
	if !ok {
		return ErrInvalidTarget
	}
	if _, err := ParseReportTarget(string(t.Type), t.ID); err != nil {
		return err
	}
	return nil
}
