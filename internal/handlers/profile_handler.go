package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	postService    *services.PostService
}

func NewProfileHandler(profileService *services.ProfileService, postService *services.PostService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, postService: postService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := h.profileService.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	followers, err := h.profileService.FollowerCount(ctx, user.ID)
	if err != nil {
		return respondError(c, err)
	}
	posts, err := h.postService.GetUserPosts(ctx, user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ProfileResponse{
		User:          dto.NewPublicUserResponse(user),
		FollowerCount: followers,
		Posts:         posts,
	})
}

func (h *ProfileHandler) Search(c *fiber.Ctx) error {
	users, err := h.profileService.SearchUsers(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = dto.NewPublicUserResponse(&users[i])
	}
	return c.JSON(fiber.Map{"users": resp})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.profileService.UpdateProfile(c.UserContext(), userID, services.ProfileUpdate{
		DisplayName:  req.DisplayName,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewUserResponse(user))
}
