package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultAccessRequestCooldown = 7 * 24 * time.Hour

type CategoryService struct {
	db       *gorm.DB
	cooldown time.Duration
	now      Clock
}

func NewCategoryService(db *gorm.DB, cooldown time.Duration) *CategoryService {
	if cooldown <= 0 {
		cooldown = DefaultAccessRequestCooldown
	}
	return &CategoryService{db: db, cooldown: cooldown, now: systemClock}
}

func (s *CategoryService) WithClock(now Clock) *CategoryService {
	s.now = now
	return s
}

func (s *CategoryService) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storageError("get_category", err, "category_id", id)
	}
	return &category, nil
}

func (s *CategoryService) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storageError("get_category_by_name", err)
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, creatorID uuid.UUID, name, description string, restricted bool) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}
	if len(name) > 100 || len(description) > 1000 {
		return nil, ErrInvalidInput
	}

	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryExists
		}
		category = models.Category{
			Name:         name,
			Description:  strings.TrimSpace(description),
			IsRestricted: restricted,
			CreatedByID:  &creatorID,
		}
		return tx.Create(&category).Error
	})
	if err != nil {
		return nil, finish("create_category", err, "user_id", creatorID)
	}
	return &category, nil
}

func (s *CategoryService) Search(ctx context.Context, term string, limit int) ([]models.Category, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Category{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%").
		Order("is_verified DESC, name ASC").
		Limit(limit).
		Find(&categories).Error
	if err != nil {
		return nil, storageError("search_categories", err)
	}
	return categories, nil
}

func (s *CategoryService) GetFollowed(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Joins("JOIN category_follows ON category_follows.category_id = categories.id").
		Where("category_follows.user_id = ?", userID).
		Order("categories.name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, storageError("get_followed_categories", err, "user_id", userID)
	}
	return categories, nil
}

func (s *CategoryService) GetVerified(ctx context.Context, take int) ([]models.Category, error) {
	if take <= 0 {
		take = 10
	}
	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("is_verified = ?", true).Order("name ASC").Limit(take).Find(&categories).Error; err != nil {
		return nil, storageError("get_verified_categories", err)
	}
	return categories, nil
}

// GetRecent returns the categories the user created, newest first.
func (s *CategoryService) GetRecent(ctx context.Context, userID uuid.UUID, take int) ([]models.Category, error) {
	if take <= 0 {
		take = 10
	}
	var categories []models.Category
	err := s.db.WithContext(ctx).Where("created_by_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(take).Find(&categories).Error
	if err != nil {
		return nil, storageError("get_recent_categories", err, "user_id", userID)
	}
	return categories, nil
}

func (s *CategoryService) IsFollowing(ctx context.Context, userID uuid.UUID, categoryID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CategoryFollow{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).Count(&count).Error
	if err != nil {
		return false, storageError("is_following", err, "user_id", userID, "category_id", categoryID)
	}
	return count > 0, nil
}

// ToggleFollow follows or unfollows the category and returns whether the user
// now follows it.
func (s *CategoryService) ToggleFollow(ctx context.Context, userID uuid.UUID, categoryID uint) (bool, error) {
	var following bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCategoryNotFound
		}

		result := tx.Where("user_id = ? AND category_id = ?", userID, categoryID).Delete(&models.CategoryFollow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			following = false
			return nil
		}
		following = true
		return tx.Create(&models.CategoryFollow{UserID: userID, CategoryID: categoryID}).Error
	})
	if err != nil {
		return false, finish("toggle_follow", err, "user_id", userID, "category_id", categoryID)
	}
	return following, nil
}

func (s *CategoryService) HasPendingAccessRequest(ctx context.Context, userID uuid.UUID, categoryID uint) (bool, error) {
	return s.hasRequestWithStatus(ctx, userID, categoryID, models.AccessPending)
}

func (s *CategoryService) HasApprovedAccess(ctx context.Context, userID uuid.UUID, categoryID uint) (bool, error) {
	return s.hasRequestWithStatus(ctx, userID, categoryID, models.AccessApproved)
}

func (s *CategoryService) hasRequestWithStatus(ctx context.Context, userID uuid.UUID, categoryID uint, status models.AccessRequestStatus) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CategoryAccessRequest{}).
		Where("user_id = ? AND category_id = ? AND status = ?", userID, categoryID, status).
		Count(&count).Error
	if err != nil {
		return false, storageError("access_request_status", err, "user_id", userID, "category_id", categoryID)
	}
	return count > 0, nil
}

func (s *CategoryService) ListUserAccessRequests(ctx context.Context, userID uuid.UUID) ([]models.CategoryAccessRequest, error) {
	var requests []models.CategoryAccessRequest
	err := s.db.WithContext(ctx).Preload("Category").Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").Find(&requests).Error
	if err != nil {
		return nil, storageError("list_user_access_requests", err, "user_id", userID)
	}
	return requests, nil
}

// SubmitAccessRequest files a request to post in a restricted category. A
// rejected request may be resubmitted once the cooldown has passed; the same
// row is reused so there is one request per user and category.
func (s *CategoryService) SubmitAccessRequest(ctx context.Context, userID uuid.UUID, categoryID uint, reason string, documentPath *string) (*models.CategoryAccessRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if len(reason) > 500 {
		return nil, ErrInvalidInput
	}
	now := s.now()

	var request models.CategoryAccessRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCategoryNotFound
		}

		err := tx.Where("user_id = ? AND category_id = ?", userID, categoryID).First(&request).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			request = models.CategoryAccessRequest{
				UserID:                 userID,
				CategoryID:             categoryID,
				Reason:                 reason,
				Status:                 models.AccessPending,
				SupportingDocumentPath: documentPath,
				CreatedAt:              now,
				UpdatedAt:              now,
			}
			return tx.Create(&request).Error
		}
		if err != nil {
			return err
		}

		switch request.Status {
		case models.AccessPending:
			return ErrRequestPending
		case models.AccessApproved:
			return ErrAccessAlreadyGranted
		}

		eligibleAt := request.UpdatedAt.Add(s.cooldown)
		if now.Before(eligibleAt) {
			return &CooldownError{RejectedAt: request.UpdatedAt, EligibleAt: eligibleAt, Now: now}
		}

		request.Reason = reason
		request.Status = models.AccessPending
		request.SupportingDocumentPath = documentPath
		request.ReviewedByID = nil
		request.UpdatedAt = now
		return tx.Model(&request).Updates(map[string]interface{}{
			"reason":                   reason,
			"status":                   models.AccessPending,
			"supporting_document_path": documentPath,
			"reviewed_by_id":           nil,
			"updated_at":               now,
		}).Error
	})
	if err != nil {
		var cd *CooldownError
		if errors.As(err, &cd) {
			metrics.AccessRequests.WithLabelValues("cooldown").Inc()
		}
		return nil, finish("submit_access_request", err, "user_id", userID, "category_id", categoryID)
	}

	metrics.AccessRequests.WithLabelValues("submitted").Inc()
	return &request, nil
}

// CanPost reports whether the user may post in the category. Verified
// restricted categories need an approved access request unless the user is an admin.
func (s *CategoryService) CanPost(ctx context.Context, userID uuid.UUID, category *models.Category, isAdmin bool) (bool, error) {
	if !category.RequiresAccess() || isAdmin {
		return true, nil
	}
	return s.HasApprovedAccess(ctx, userID, category.ID)
}
