package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService backs the admin console. Authorization happens in middleware;
// callers here are trusted.
type AdminService struct {
	db  *gorm.DB
	now Clock
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, now: systemClock}
}

func (s *AdminService) WithClock(now Clock) *AdminService {
	s.now = now
	return s
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, storageError("list_users", err)
	}
	return users, nil
}

func (s *AdminService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, storageError("list_categories", err)
	}
	return categories, nil
}

func (s *AdminService) ListAccessRequests(ctx context.Context, status models.AccessRequestStatus) ([]models.CategoryAccessRequest, error) {
	query := s.db.WithContext(ctx).Preload("User").Preload("Category").Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var requests []models.CategoryAccessRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, storageError("list_access_requests", err)
	}
	return requests, nil
}

// ToggleCategoryVerification flips the verified flag and returns the new value.
func (s *AdminService) ToggleCategoryVerification(ctx context.Context, categoryID uint) (bool, error) {
	var verified bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		verified = !category.IsVerified
		return tx.Model(&category).Update("is_verified", verified).Error
	})
	if err != nil {
		return false, finish("toggle_category_verification", err, "category_id", categoryID)
	}

	metrics.RecordModeration("toggle_verification", string(models.TargetCategory), 0)
	return verified, nil
}

// DeleteCategory removes the category with everything posted in it and
// resolves-and-detaches the reports on all of it. It returns the number of
// reports resolved.
func (s *AdminService) DeleteCategory(ctx context.Context, categoryID uint) (int64, error) {
	var resolved int64
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCategoryNotFound
		}

		var err error
		resolved, err = deleteCategory(tx, categoryID, now)
		return err
	})
	if err != nil {
		return 0, finish("delete_category", err, "category_id", categoryID)
	}

	metrics.RecordModeration("delete_category", string(models.TargetCategory), resolved)
	return resolved, nil
}

func (s *AdminService) ApproveAccessRequest(ctx context.Context, requestID uint, reviewerID uuid.UUID) error {
	return s.reviewAccessRequest(ctx, requestID, reviewerID, models.AccessApproved)
}

func (s *AdminService) RejectAccessRequest(ctx context.Context, requestID uint, reviewerID uuid.UUID) error {
	return s.reviewAccessRequest(ctx, requestID, reviewerID, models.AccessRejected)
}

// reviewAccessRequest rewrites status unconditionally; re-approving an
// approved request just refreshes the timestamp.
func (s *AdminService) reviewAccessRequest(ctx context.Context, requestID uint, reviewerID uuid.UUID, status models.AccessRequestStatus) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": s.now(),
	}
	if reviewerID != uuid.Nil {
		updates["reviewed_by_id"] = reviewerID
	}

	result := s.db.WithContext(ctx).Model(&models.CategoryAccessRequest{}).
		Where("id = ?", requestID).
		Updates(updates)
	if result.Error != nil {
		return storageError("review_access_request", result.Error, "request_id", requestID, "status", status)
	}
	if result.RowsAffected == 0 {
		return ErrAccessRequestNotFound
	}

	metrics.AccessRequests.WithLabelValues(string(status)).Inc()
	return nil
}

// ToggleUserBan flips the active flag and returns the new value. Access
// tokens already issued stay valid until they expire.
func (s *AdminService) ToggleUserBan(ctx context.Context, userID uuid.UUID) (bool, error) {
	var active bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		active = !user.IsActive
		if err := tx.Model(&user).Update("is_active", active).Error; err != nil {
			return err
		}
		if !active {
			return tx.Model(&models.RefreshToken{}).
				Where("user_id = ? AND revoked = ?", userID, false).
				Update("revoked", true).Error
		}
		return nil
	})
	if err != nil {
		return false, finish("toggle_user_ban", err, "user_id", userID)
	}

	metrics.RecordModeration("toggle_ban", string(models.TargetUser), 0)
	return active, nil
}

func (s *AdminService) SetUserRole(ctx context.Context, userID uuid.UUID, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return ErrInvalidRole
	}
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return storageError("set_user_role", result.Error, "user_id", userID)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *AdminService) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("find_user_by_email", err)
	}
	return &user, nil
}
