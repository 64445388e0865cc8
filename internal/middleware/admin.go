package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRequired admits a request when any of these holds:
// 1. X-Admin-Token matches ADMIN_TOKEN
// 2. the user's email or id is listed in ADMIN_EMAILS / ADMIN_USER_IDS
// 3. the user row has the admin role
// Token-based callers other than (1) must also map to an active user row.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			c.Locals("is_admin", true)
			return c.Next()
		}

		mc, err := claims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		sub, _ := mc["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		// Config-listed admins lose access once suspended, like role admins.
		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err == nil && user.IsActive {
			if containsFold(adminEmails, user.Email) || contains(adminUserIDs, sub) || user.IsAdmin() {
				c.Locals("is_admin", true)
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}

func containsFold(list []string, val string) bool {
	if val == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, val) {
			return true
		}
	}
	return false
}
