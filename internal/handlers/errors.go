package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/storage"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	notFoundErrors = []error{
		services.ErrReportNotFound, services.ErrCategoryNotFound, services.ErrAccessRequestNotFound,
		services.ErrUserNotFound, services.ErrPostNotFound, services.ErrCommentNotFound, services.ErrTargetNotFound,
	}
	conflictErrors = []error{
		services.ErrAlreadyReported, services.ErrCategoryExists, services.ErrUsernameTaken, services.ErrEmailTaken,
		services.ErrRequestPending, services.ErrAccessAlreadyGranted, services.ErrReportDetached,
	}
	forbiddenErrors = []error{
		services.ErrAccessRequired, services.ErrAccountSuspended, services.ErrNotPostOwner,
	}
	unauthorizedErrors = []error{
		services.ErrInvalidCredentials, services.ErrInvalidToken,
	}
)

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps service errors to HTTP responses. Anything unexpected is
// reported to Sentry and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var cooldown *services.CooldownError
	var rejected *services.ContentRejectedError

	switch {
	case errors.As(err, &cooldown):
		return fail(c, fiber.StatusTooManyRequests, cooldown.Error())
	case errors.As(err, &rejected):
		return fail(c, fiber.StatusUnprocessableEntity, rejected.Message)
	case errors.Is(err, services.ErrTargetNotDeletable):
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	case isAny(err, notFoundErrors):
		return fail(c, fiber.StatusNotFound, err.Error())
	case isAny(err, conflictErrors):
		return fail(c, fiber.StatusConflict, err.Error())
	case isAny(err, forbiddenErrors):
		return fail(c, fiber.StatusForbidden, err.Error())
	case isAny(err, unauthorizedErrors):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, storage.ErrFileTooLarge):
		return fail(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, storage.ErrUnsupportedMedia), errors.Is(err, storage.ErrEmptyFile):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case services.IsDomainError(err):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

func currentUser(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := middleware.GetUserID(c)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func unauthorized(c *fiber.Ctx) error {
	return fail(c, fiber.StatusUnauthorized, "Unauthorized")
}

func parseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ErrorHandler renders errors that escape handlers, such as fiber routing errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return fail(c, code, message)
}
