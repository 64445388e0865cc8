package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	post, err := h.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	categoryID, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	media := make([]services.MediaInput, len(req.Media))
	for i, m := range req.Media {
		media[i] = services.MediaInput{Path: m.Path, Type: m.Type}
	}

	post, err := h.postService.CreatePost(c.UserContext(), services.CreatePostInput{
		UserID:     userID,
		CategoryID: categoryID,
		Content:    req.Content,
		Media:      media,
		IsAdmin:    middleware.IsAdmin(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}

	var req dto.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	post, err := h.postService.UpdatePost(c.UserContext(), id, userID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}

	resolved, err := h.postService.DeletePost(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DeletePostResponse{PostID: id, ReportsResolved: resolved})
}

func (h *PostHandler) ToggleLike(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}

	liked, count, err := h.postService.ToggleLike(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LikeResponse{Liked: liked, Count: count})
}

func (h *PostHandler) Comments(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	comments, err := h.postService.GetComments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

func (h *PostHandler) CreateComment(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	comment, err := h.postService.CreateComment(c.UserContext(), userID, id, req.ParentCommentID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *PostHandler) Feed(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	posts, err := h.postService.GetFeed(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (h *PostHandler) MyPosts(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	posts, err := h.postService.GetUserPosts(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (h *PostHandler) Search(c *fiber.Ctx) error {
	posts, err := h.postService.SearchPosts(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
