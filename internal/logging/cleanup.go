package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"gorm.io/gorm"
)

// PruneSystemLogs deletes system_logs rows older than retentionDays before now.
func PruneSystemLogs(db *gorm.DB, retentionDays int, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup runs a daily goroutine that prunes system_logs past the retention window.
func StartCleanup(db *gorm.DB, retentionDays int, done chan struct{}) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PruneSystemLogs(db, retentionDays, time.Now())
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}
