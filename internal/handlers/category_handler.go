package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	postService     *services.PostService
}

func NewCategoryHandler(categoryService *services.CategoryService, postService *services.PostService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, postService: postService}
}

// Get returns a category, with the caller's follow and posting state when
// the request carries a token.
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	category, err := h.categoryService.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(dto.CategoryResponse{Category: category, CanPost: !category.RequiresAccess()})
	}
	return h.withStatus(c, userID, category)
}

// Status returns the caller's relationship to a category.
func (h *CategoryHandler) Status(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	category, err := h.categoryService.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return h.withStatus(c, userID, category)
}

func (h *CategoryHandler) withStatus(c *fiber.Ctx, userID uuid.UUID, category *models.Category) error {
	ctx := c.UserContext()
	following, err := h.categoryService.IsFollowing(ctx, userID, category.ID)
	if err != nil {
		return respondError(c, err)
	}
	canPost, err := h.categoryService.CanPost(ctx, userID, category, middleware.IsAdmin(c))
	if err != nil {
		return respondError(c, err)
	}
	pending, err := h.categoryService.HasPendingAccessRequest(ctx, userID, category.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.CategoryResponse{Category: category, IsFollowing: following, CanPost: canPost, HasPending: pending})
}

func (h *CategoryHandler) Posts(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}
	if _, err := h.categoryService.GetByID(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	posts, err := h.postService.GetCategoryPosts(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (h *CategoryHandler) Verified(c *fiber.Ctx) error {
	take, _ := strconv.Atoi(c.Query("take", "10"))
	categories, err := h.categoryService.GetVerified(c.UserContext(), take)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *CategoryHandler) Search(c *fiber.Ctx) error {
	categories, err := h.categoryService.Search(c.UserContext(), c.Query("q"), 10)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	category, err := h.categoryService.Create(c.UserContext(), userID, req.Name, req.Description, req.IsRestricted)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) ToggleFollow(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	following, err := h.categoryService.ToggleFollow(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FollowResponse{Following: following})
}

func (h *CategoryHandler) SubmitAccessRequest(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	var req dto.AccessRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	request, err := h.categoryService.SubmitAccessRequest(c.UserContext(), userID, id, req.Reason, req.SupportingDocumentPath)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

func (h *CategoryHandler) Followed(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	categories, err := h.categoryService.GetFollowed(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *CategoryHandler) Recent(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	take, _ := strconv.Atoi(c.Query("take", "10"))
	categories, err := h.categoryService.GetRecent(c.UserContext(), userID, take)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *CategoryHandler) MyAccessRequests(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	requests, err := h.categoryService.ListUserAccessRequests(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}
