package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = dto.NewUserResponse(&users[i])
	}
	return c.JSON(fiber.Map{"users": resp})
}

func (h *AdminHandler) ToggleUserBan(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	active, err := h.adminService.ToggleUserBan(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BanResponse{UserID: userID.String(), IsActive: active})
}

func (h *AdminHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.adminService.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *AdminHandler) ToggleVerification(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	verified, err := h.adminService.ToggleCategoryVerification(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.VerificationResponse{CategoryID: id, IsVerified: verified})
}

func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	resolved, err := h.adminService.DeleteCategory(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted", "resolved_reports": resolved})
}

func (h *AdminHandler) ListAccessRequests(c *fiber.Ctx) error {
	requests, err := h.adminService.ListAccessRequests(c.UserContext(), models.AccessRequestStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

func (h *AdminHandler) ApproveAccessRequest(c *fiber.Ctx) error {
	return h.review(c, h.adminService.ApproveAccessRequest)
}

func (h *AdminHandler) RejectAccessRequest(c *fiber.Ctx) error {
	return h.review(c, h.adminService.RejectAccessRequest)
}

func (h *AdminHandler) review(c *fiber.Ctx, action func(ctx context.Context, requestID uint, reviewerID uuid.UUID) error) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid request ID")
	}

	reviewerID, _ := currentUser(c)
	if err := action(c.UserContext(), id, reviewerID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Access request updated"})
}
