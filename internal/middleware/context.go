package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Locals key under which the jwt middleware stores the parsed token.
const userLocalsKey = "user"

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals(userLocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

func GetRole(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	role, _ := mc["role"].(string)
	return role
}

// IsAdmin reports whether the caller is an admin, either by token role or
// because AdminRequired already let the request through.
func IsAdmin(c *fiber.Ctx) bool {
	if ok, _ := c.Locals("is_admin").(bool); ok {
		return true
	}
	return GetRole(c) == models.RoleAdmin
}
