package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping func() error
}

func NewHealthHandler(ping func() error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, dbStatus := "ok", "ok"
	code := fiber.StatusOK
	if err := h.ping(); err != nil {
		status, dbStatus = "degraded", "unhealthy: "+err.Error()
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
