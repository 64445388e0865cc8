package services

import (
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"gorm.io/gorm"
)

// Resolve-and-detach: every deletion path marks the reports on the removed
// content Resolved and clears their target id, keeping them as an audit trail.
// All helpers run inside the caller's transaction.

func resolveAndDetach(tx *gorm.DB, targetType models.ReportTargetType, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := tx.Model(&models.Report{}).
		Where("target_type = ? AND target_id IN ?", targetType, ids).
		Updates(map[string]interface{}{
			"status":      models.ReportResolved,
			"target_id":   nil,
			"resolved_at": now,
		})
	return result.RowsAffected, result.Error
}

func uintKeys(ids []uint) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = strconv.FormatUint(uint64(id), 10)
	}
	return keys
}

// deletePosts removes posts with their likes, media and comments.
func deletePosts(tx *gorm.DB, postIDs []uint, now time.Time) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}

	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("post_id IN ?", postIDs).Pluck("id", &commentIDs).Error; err != nil {
		return 0, err
	}

	resolved, err := resolveAndDetach(tx, models.TargetPost, uintKeys(postIDs), now)
	if err != nil {
		return 0, err
	}
	n, err := resolveAndDetach(tx, models.TargetComment, uintKeys(commentIDs), now)
	if err != nil {
		return 0, err
	}
	resolved += n

	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostLike{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostMedia{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
		return 0, err
	}
	return resolved, nil
}

// deleteCommentThread removes a comment and every reply beneath it.
func deleteCommentThread(tx *gorm.DB, commentID uint, now time.Time) (int64, error) {
	thread := []uint{commentID}
	frontier := []uint{commentID}
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).Where("parent_comment_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return 0, err
		}
		thread = append(thread, children...)
		frontier = children
	}

	resolved, err := resolveAndDetach(tx, models.TargetComment, uintKeys(thread), now)
	if err != nil {
		return 0, err
	}
	if err := tx.Where("id IN ?", thread).Delete(&models.Comment{}).Error; err != nil {
		return 0, err
	}
	return resolved, nil
}

// deleteCategory removes a category, its posts, follows and access requests.
func deleteCategory(tx *gorm.DB, categoryID uint, now time.Time) (int64, error) {
	var postIDs []uint
	if err := tx.Model(&models.Post{}).Where("category_id = ?", categoryID).Pluck("id", &postIDs).Error; err != nil {
		return 0, err
	}

	resolved, err := deletePosts(tx, postIDs, now)
	if err != nil {
		return 0, err
	}
	n, err := resolveAndDetach(tx, models.TargetCategory, uintKeys([]uint{categoryID}), now)
	if err != nil {
		return 0, err
	}
	resolved += n

	if err := tx.Where("category_id = ?", categoryID).Delete(&models.CategoryFollow{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("category_id = ?", categoryID).Delete(&models.CategoryAccessRequest{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Delete(&models.Category{}, categoryID).Error; err != nil {
		return 0, err
	}
	return resolved, nil
}
