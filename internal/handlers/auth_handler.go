package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.authService.ChangePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}
