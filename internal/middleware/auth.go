package middleware

import (
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

func jwtConfig(cfg *config.Config) jwtware.Config {
	return jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ContextKey: userLocalsKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	}
}

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg))
}

// OptionalJWT lets anonymous requests through but still rejects a bad token,
// so public pages can be personalized for signed-in callers.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	jc := jwtConfig(cfg)
	jc.Filter = func(c *fiber.Ctx) bool {
		return c.Get(fiber.HeaderAuthorization) == ""
	}
	return jwtware.New(jc)
}
