package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationService files reports and applies admin actions to report groups.
// A report group is every report that shares the anchor report's target.
type ModerationService struct {
	db     *gorm.DB
	filter *ContentFilter
	now    Clock
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db, filter: NewContentFilter(), now: systemClock}
}

func (s *ModerationService) WithClock(now Clock) *ModerationService {
	s.now = now
	return s
}

func (s *ModerationService) Filter() *ContentFilter {
	return s.filter
}

type ReportFilter struct {
	Status     models.ReportStatus
	TargetType models.ReportTargetType
	Limit      int
	Offset     int
}

// ReportGroup is a derived view of the reports sharing one target. Detached
// reports have no target and always form a group of their own.
type ReportGroup struct {
	Target       *models.ReportTarget `json:"target"`
	AnchorID     uint                 `json:"anchor_id"`
	Reports      []models.Report      `json:"reports"`
	Count        int                  `json:"count"`
	Pending      int                  `json:"pending"`
	Dismissed    int                  `json:"dismissed"`
	Resolved     int                  `json:"resolved"`
	LatestReport time.Time            `json:"latest_report"`
}

func sameTarget(t models.ReportTarget) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("target_type = ? AND target_id = ?", t.Type, t.ID)
	}
}

func (s *ModerationService) CreateReport(ctx context.Context, reporterID uuid.UUID, target models.ReportTarget, reason, details string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	target, err := models.ParseReportTarget(string(target.Type), target.ID)
	if err != nil {
		return nil, err
	}
	if d := strings.TrimSpace(details); d != "" {
		reason = reason + ": " + d
	}

	var report models.Report
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTargetExists(tx, target); err != nil {
			return err
		}
		if target.Type == models.TargetUser && target.ID == reporterID.String() {
			return ErrSelfReport
		}

		var existing int64
		if err := tx.Model(&models.Report{}).Scopes(sameTarget(target)).
			Where("reporter_id = ?", reporterID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyReported
		}

		report = models.Report{
			Reason:     reason,
			Status:     models.ReportPending,
			ReporterID: reporterID,
		}
		report.SetTarget(target)
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, finish("create_report", err, "reporter_id", reporterID, "target", target.Key())
	}

	metrics.ReportsCreated.WithLabelValues(string(target.Type)).Inc()
	return &report, nil
}

func checkTargetExists(tx *gorm.DB, t models.ReportTarget) error {
	query := tx
	switch t.Type {
	case models.TargetPost:
		query = query.Model(&models.Post{})
	case models.TargetComment:
		query = query.Model(&models.Comment{})
	case models.TargetCategory:
		query = query.Model(&models.Category{})
	case models.TargetUser:
		query = query.Model(&models.User{})
	default:
		return ErrInvalidTarget
	}

	var count int64
	if err := query.Where("id = ?", t.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTargetNotFound
	}
	return nil
}

func (s *ModerationService) HasReported(ctx context.Context, reporterID uuid.UUID, target models.ReportTarget) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Report{}).Scopes(sameTarget(target)).
		Where("reporter_id = ?", reporterID).Count(&count).Error
	if err != nil {
		return false, storageError("has_reported", err, "reporter_id", reporterID)
	}
	return count > 0, nil
}

// IsPostReportDismissed reports whether an admin has dismissed reports on the post.
func (s *ModerationService) IsPostReportDismissed(ctx context.Context, postID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Report{}).Scopes(sameTarget(models.PostTarget(postID))).
		Where("status = ?", models.ReportDismissed).Count(&count).Error
	if err != nil {
		return false, storageError("is_post_report_dismissed", err, "post_id", postID)
	}
	return count > 0, nil
}

func (s *ModerationService) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).Preload("Reporter").First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, storageError("get_report", err, "report_id", id)
	}
	return &report, nil
}

func (s *ModerationService) ListReports(ctx context.Context, f ReportFilter) ([]models.Report, int64, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.TargetType != "" {
		query = query.Where("target_type = ?", f.TargetType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("list_reports", err)
	}

	var reports []models.Report
	if err := query.Preload("Reporter").Order("created_at DESC, id DESC").
		Limit(f.Limit).Offset(f.Offset).Find(&reports).Error; err != nil {
		return nil, 0, storageError("list_reports", err)
	}
	return reports, total, nil
}

// ListReportGroups groups reports by target, newest group first. An empty
// status lists every report.
func (s *ModerationService) ListReportGroups(ctx context.Context, status models.ReportStatus) ([]ReportGroup, error) {
	query := s.db.WithContext(ctx).Preload("Reporter").Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, storageError("list_report_groups", err)
	}
	return groupReports(reports), nil
}

// groupReports expects reports ordered newest first and keeps that order.
func groupReports(reports []models.Report) []ReportGroup {
	groups := make([]ReportGroup, 0)
	index := make(map[string]int)

	for _, r := range reports {
		key := fmt.Sprintf("detached:%d", r.ID)
		var target *models.ReportTarget
		if t, ok := r.Target(); ok {
			key = t.Key()
			target = &t
		}

		i, ok := index[key]
		if !ok {
			groups = append(groups, ReportGroup{Target: target, AnchorID: r.ID, LatestReport: r.CreatedAt})
			i = len(groups) - 1
			index[key] = i
		}

		g := &groups[i]
		g.Reports = append(g.Reports, r)
		g.Count++
		switch r.Status {
		case models.ReportPending:
			g.Pending++
		case models.ReportDismissed:
			g.Dismissed++
		case models.ReportResolved:
			g.Resolved++
		}
	}
	return groups
}

func loadAnchor(tx *gorm.DB, id uint) (*models.Report, models.ReportTarget, error) {
	var anchor models.Report
	if err := tx.First(&anchor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ReportTarget{}, ErrReportNotFound
		}
		return nil, models.ReportTarget{}, err
	}
	t, ok := anchor.Target()
	if !ok {
		return &anchor, models.ReportTarget{}, ErrReportDetached
	}
	return &anchor, t, nil
}

// DismissReportGroup marks every unresolved report sharing the anchor's target
// as Dismissed, the anchor included. It returns the number of reports in the
// group that are now Dismissed.
func (s *ModerationService) DismissReportGroup(ctx context.Context, anchorID uint) (int64, error) {
	var (
		affected int64
		target   models.ReportTarget
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, t, err := loadAnchor(tx, anchorID)
		if err != nil {
			return err
		}
		target = t

		result := tx.Model(&models.Report{}).Scopes(sameTarget(t)).
			Where("status <> ?", models.ReportResolved).
			Update("status", models.ReportDismissed)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, finish("dismiss_report_group", err, "report_id", anchorID)
	}

	metrics.RecordModeration("dismiss", string(target.Type), affected)
	return affected, nil
}

// UndoDismiss returns the Dismissed members of the anchor's group to Pending.
// Resolved reports are never reopened.
func (s *ModerationService) UndoDismiss(ctx context.Context, anchorID uint) (int64, error) {
	var (
		affected int64
		target   models.ReportTarget
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, t, err := loadAnchor(tx, anchorID)
		if err != nil {
			return err
		}
		target = t

		result := tx.Model(&models.Report{}).Scopes(sameTarget(t)).
			Where("status = ?", models.ReportDismissed).
			Update("status", models.ReportPending)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, finish("undo_dismiss", err, "report_id", anchorID)
	}

	metrics.RecordModeration("undo_dismiss", string(target.Type), affected)
	return affected, nil
}

// DeleteReportedContent deletes the content the report points at and
// resolves-and-detaches every report on it, in one transaction. Users are
// banned rather than deleted, so user targets return ErrTargetNotDeletable.
// It returns the number of reports resolved.
func (s *ModerationService) DeleteReportedContent(ctx context.Context, reportID uint) (int64, error) {
	var (
		resolved int64
		target   models.ReportTarget
	)
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, t, err := loadAnchor(tx, reportID)
		if err != nil {
			return err
		}
		target = t

		if t.Type == models.TargetUser {
			return ErrTargetNotDeletable
		}
		id, err := t.EntityID()
		if err != nil {
			return err
		}

		switch t.Type {
		case models.TargetPost:
			resolved, err = deletePosts(tx, []uint{id}, now)
		case models.TargetComment:
			resolved, err = deleteCommentThread(tx, id, now)
		case models.TargetCategory:
			resolved, err = deleteCategory(tx, id, now)
		default:
			err = ErrInvalidTarget
		}
		return err
	})
	if err != nil {
		return 0, finish("delete_reported_content", err, "report_id", reportID)
	}

	metrics.RecordModeration("delete_content", string(target.Type), resolved)
	return resolved, nil
}
