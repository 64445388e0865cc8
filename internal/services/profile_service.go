package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	db         *gorm.DB
	moderation *ModerationService
}

func NewProfileService(db *gorm.DB, moderation *ModerationService) *ProfileService {
	return &ProfileService{db: db, moderation: moderation}
}

func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("get_user", err, "user_id", id)
	}
	return &user, nil
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("get_user_by_username", err)
	}
	return &user, nil
}

// SearchUsers matches username or display name, active accounts only.
func (s *ProfileService) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.User{}, nil
	}
	like := "%" + strings.ToLower(term) + "%"

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", like, like).
		Order("username ASC").
		Limit(10).
		Find(&users).Error
	if err != nil {
		return nil, storageError("search_users", err)
	}
	return users, nil
}

// FollowerCount counts distinct users following any category the user created.
func (s *ProfileService) FollowerCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CategoryFollow{}).
		Joins("JOIN categories ON categories.id = category_follows.category_id").
		Where("categories.created_by_id = ?", userID).
		Distinct("category_follows.user_id").
		Count(&count).Error
	if err != nil {
		return 0, storageError("follower_count", err, "user_id", userID)
	}
	return count, nil
}

type ProfileUpdate struct {
	DisplayName  *string
	Bio          *string
	ProfileImage *string
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.DisplayName != nil {
		v := strings.TrimSpace(*in.DisplayName)
		if len(v) > 100 {
			return nil, ErrInvalidInput
		}
		updates["display_name"] = v
	}
	if in.Bio != nil {
		v := strings.TrimSpace(*in.Bio)
		if len(v) > 500 {
			return nil, ErrInvalidInput
		}
		updates["bio"] = v
	}
	if in.ProfileImage != nil {
		updates["profile_image"] = strings.TrimSpace(*in.ProfileImage)
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if result.Error != nil {
			return nil, storageError("update_profile", result.Error, "user_id", userID)
		}
		if result.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}
	return s.GetByID(ctx, userID)
}

func (s *ProfileService) ReportUser(ctx context.Context, reporterID, targetUserID uuid.UUID, reason, details string) (*models.Report, error) {
	return s.moderation.CreateReport(ctx, reporterID, models.UserTarget(targetUserID), reason, details)
}
