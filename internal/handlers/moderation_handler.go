package handlers

import (
	"context"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) ReportPost(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	return h.createReport(c, models.PostTarget(id))
}

func (h *ModerationHandler) ReportComment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid comment ID")
	}
	return h.createReport(c, models.CommentTarget(id))
}

func (h *ModerationHandler) ReportUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	return h.createReport(c, models.UserTarget(id))
}

func (h *ModerationHandler) createReport(c *fiber.Ctx, target models.ReportTarget) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	report, err := h.moderationService.CreateReport(c.UserContext(), userID, target, req.Reason, req.Details)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	reports, total, err := h.moderationService.ListReports(c.UserContext(), services.ReportFilter{
		Status:     models.ReportStatus(c.Query("status")),
		TargetType: models.ReportTargetType(c.Query("target_type")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ReportListResponse{Reports: reports, Total: total, Limit: limit, Offset: offset})
}

func (h *ModerationHandler) ListReportGroups(c *fiber.Ctx) error {
	groups, err := h.moderationService.ListReportGroups(c.UserContext(), models.ReportStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

func (h *ModerationHandler) DismissGroup(c *fiber.Ctx) error {
	return h.groupAction(c, h.moderationService.DismissReportGroup)
}

func (h *ModerationHandler) UndoDismiss(c *fiber.Ctx) error {
	return h.groupAction(c, h.moderationService.UndoDismiss)
}

func (h *ModerationHandler) DeleteContent(c *fiber.Ctx) error {
	return h.groupAction(c, h.moderationService.DeleteReportedContent)
}

type reportAction func(ctx context.Context, reportID uint) (int64, error)

func (h *ModerationHandler) groupAction(c *fiber.Ctx, action reportAction) error {
	reportID, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	affected, err := action(c.UserContext(), reportID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ReportActionResponse{ReportID: reportID, Affected: affected})
}
