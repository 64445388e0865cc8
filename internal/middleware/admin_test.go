package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newAdminApp(db *gorm.DB, cfg *config.Config) *fiber.App {
	cfg.JWTSecret = testSecret
	app := fiber.New()
	app.Get("/admin", JWTProtected(cfg), AdminRequired(db, cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func seedUser(t *testing.T, db *gorm.DB, username, role string, active bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	if !active {
		require.NoError(t, db.Model(u).Update("is_active", false).Error)
	}
	return u
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": u.Email,
		"role":  u.Role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func get(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAdminRequiredByRole(t *testing.T) {
	db := newTestDB(t)
	app := newAdminApp(db, &config.Config{})

	assert.Equal(t, http.StatusOK, get(t, app, tokenFor(t, seedUser(t, db, "root", models.RoleAdmin, true))))
	assert.Equal(t, http.StatusForbidden, get(t, app, tokenFor(t, seedUser(t, db, "plain", models.RoleUser, true))))
	assert.Equal(t, http.StatusForbidden, get(t, app, tokenFor(t, seedUser(t, db, "fallen", models.RoleAdmin, false))))
}

func TestAdminRequiredByEmailListRequiresActiveUser(t *testing.T) {
	db := newTestDB(t)
	app := newAdminApp(db, &config.Config{AdminEmails: "Ops@example.com"})

	ops := seedUser(t, db, "ops", models.RoleUser, true)
	token := tokenFor(t, ops)
	assert.Equal(t, http.StatusOK, get(t, app, token))

	require.NoError(t, db.Model(ops).Update("is_active", false).Error)
	assert.Equal(t, http.StatusForbidden, get(t, app, token))
}

func TestAdminRequiredByUserIDListRequiresActiveUser(t *testing.T) {
	db := newTestDB(t)
	listed := seedUser(t, db, "listed", models.RoleUser, true)
	banned := seedUser(t, db, "banned", models.RoleUser, false)
	app := newAdminApp(db, &config.Config{AdminUserIDs: listed.ID.String() + ", " + banned.ID.String()})

	assert.Equal(t, http.StatusOK, get(t, app, tokenFor(t, listed)))
	assert.Equal(t, http.StatusForbidden, get(t, app, tokenFor(t, banned)))
}

func TestAdminRequiredRejectsUnknownSubject(t *testing.T) {
	db := newTestDB(t)
	app := newAdminApp(db, &config.Config{AdminEmails: "ghost@example.com"})

	ghost := &models.User{ID: uuid.New(), Username: "ghost", Email: "ghost@example.com", Role: models.RoleAdmin}
	assert.Equal(t, http.StatusForbidden, get(t, app, tokenFor(t, ghost)))
}
