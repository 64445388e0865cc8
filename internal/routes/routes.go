package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Moderation *handlers.ModerationHandler
	Admin      *handlers.AdminHandler
	Category   *handlers.CategoryHandler
	Post       *handlers.PostHandler
	Profile    *handlers.ProfileHandler
	Media      *handlers.MediaHandler
}

func rateLimit(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if cfg.MediaDriver == "local" {
		app.Static("/uploads", cfg.UploadDir)
	}

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(rateLimit(60))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP
	authLimit := rateLimit(10)
	auth := api.Group("/auth")
	auth.Post("/register", authLimit, h.Auth.Register)
	auth.Post("/login", authLimit, h.Auth.Login)
	auth.Post("/refresh", authLimit, h.Auth.Refresh)

	jwt := middleware.JWTProtected(cfg)

	// Apply JWT per route so public routes under the same prefix stay public
	auth.Post("/logout", jwt, h.Auth.Logout)
	auth.Put("/password", jwt, h.Auth.ChangePassword)

	// Categories
	api.Get("/categories/verified", h.Category.Verified)
	api.Get("/categories/:id", middleware.OptionalJWT(cfg), h.Category.Get)
	api.Get("/categories/:id/posts", h.Category.Posts)
	api.Get("/categories/:id/status", jwt, h.Category.Status)
	api.Post("/categories", jwt, h.Category.Create)
	api.Post("/categories/:id/follow", jwt, h.Category.ToggleFollow)
	api.Post("/categories/:id/access-requests", jwt, h.Category.SubmitAccessRequest)
	api.Post("/categories/:id/posts", jwt, h.Post.Create)

	// Posts and comments
	api.Get("/posts/:id", h.Post.Get)
	api.Get("/posts/:id/comments", h.Post.Comments)
	api.Put("/posts/:id", jwt, h.Post.Update)
	api.Delete("/posts/:id", jwt, h.Post.Delete)
	api.Post("/posts/:id/like", jwt, h.Post.ToggleLike)
	api.Post("/posts/:id/comments", jwt, h.Post.CreateComment)
	api.Post("/posts/:id/report", jwt, h.Moderation.ReportPost)
	api.Post("/comments/:id/report", jwt, h.Moderation.ReportComment)

	// Users
	api.Get("/users/:username", h.Profile.Get)
	api.Post("/users/:id/report", jwt, h.Moderation.ReportUser)

	// Search
	api.Get("/search/posts", h.Post.Search)
	api.Get("/search/users", h.Profile.Search)
	api.Get("/search/categories", h.Category.Search)

	// Current user
	api.Get("/feed", jwt, h.Post.Feed)
	me := api.Group("/me", jwt)
	me.Get("/posts", h.Post.MyPosts)
	me.Put("/profile", h.Profile.Update)
	me.Get("/categories/followed", h.Category.Followed)
	me.Get("/categories/recent", h.Category.Recent)
	me.Get("/access-requests", h.Category.MyAccessRequests)

	// Uploads
	media := api.Group("/media", jwt)
	media.Post("/", h.Media.UploadPostMedia)
	media.Post("/verification", h.Media.UploadVerification)
	media.Post("/profile", h.Media.UploadProfileImage)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/users", h.Admin.ListUsers)
	admin.Put("/users/:id/ban", h.Admin.ToggleUserBan)
	admin.Get("/categories", h.Admin.ListCategories)
	admin.Put("/categories/:id/verify", h.Admin.ToggleVerification)
	admin.Delete("/categories/:id", h.Admin.DeleteCategory)
	admin.Get("/access-requests", h.Admin.ListAccessRequests)
	admin.Put("/access-requests/:id/approve", h.Admin.ApproveAccessRequest)
	admin.Put("/access-requests/:id/reject", h.Admin.RejectAccessRequest)
	admin.Get("/reports", h.Moderation.ListReports)
	admin.Get("/reports/groups", h.Moderation.ListReportGroups)
	admin.Post("/reports/:id/dismiss", h.Moderation.DismissGroup)
	admin.Post("/reports/:id/undo", h.Moderation.UndoDismiss)
	admin.Delete("/reports/:id/content", h.Moderation.DeleteContent)
}
