package routes

import (
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/storage"
	"gorm.io/gorm"
)

// NewHandlers builds the service graph over db and returns its HTTP handlers.
func NewHandlers(cfg *config.Config, db *gorm.DB, store storage.MediaStore, ping func() error) Handlers {
	moderationService := services.NewModerationService(db)
	categoryService := services.NewCategoryService(db, cfg.AccessRequestCooldown)
	postService := services.NewPostService(db, categoryService, moderationService.Filter()).
		WithMediaBaseURL(store.BaseURL())
	profileService := services.NewProfileService(db, moderationService)

	return Handlers{
		Auth:       handlers.NewAuthHandler(services.NewAuthService(db, cfg)),
		Health:     handlers.NewHealthHandler(ping),
		Moderation: handlers.NewModerationHandler(moderationService),
		Admin:      handlers.NewAdminHandler(services.NewAdminService(db)),
		Category:   handlers.NewCategoryHandler(categoryService, postService),
		Post:       handlers.NewPostHandler(postService),
		Profile:    handlers.NewProfileHandler(profileService, postService),
		Media:      handlers.NewMediaHandler(store, cfg.MaxUploadBytes()),
	}
}
