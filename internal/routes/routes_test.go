package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RoutesSuite struct {
	suite.Suite
	db  *gorm.DB
	cfg *config.Config
	app *fiber.App
}

func TestRoutesSuite(t *testing.T) {
	suite.Run(t, new(RoutesSuite))
}

func (s *RoutesSuite) SetupTest() {
	db, err := database.OpenSQLite(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.db = db

	s.cfg = &config.Config{
		JWTSecret:             "test-secret",
		JWTAccessExpiry:       15 * time.Minute,
		JWTRefreshExpiry:      24 * time.Hour,
		MediaDriver:           "local",
		UploadDir:             s.T().TempDir(),
		MediaBaseURL:          "http://localhost:8080/uploads",
		MaxUploadMB:           1,
		CORSOrigins:           "*",
		AccessRequestCooldown: 7 * 24 * time.Hour,
	}

	s.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	s.app.Use(middleware.Metrics())
	store := storage.NewLocalStore(s.cfg.UploadDir, s.cfg.MediaBaseURL)
	Setup(s.app, s.cfg, db, NewHandlers(s.cfg, db, store, func() error { return nil }))
}

func (s *RoutesSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *RoutesSuite) do(method, path, token string, body any) (*http.Response, map[string]any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(req)
}

func (s *RoutesSuite) send(req *http.Request) (*http.Response, map[string]any) {
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

// register creates an account and returns its access token and user id.
func (s *RoutesSuite) register(username string) (string, string) {
	resp, body := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	user := body["user"].(map[string]any)
	return body["access_token"].(string), user["id"].(string)
}

func (s *RoutesSuite) createCategory(token, name string, restricted bool) uint {
	resp, body := s.do(http.MethodPost, "/api/categories", token, map[string]any{
		"name": name, "description": "about " + name, "is_restricted": restricted,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	return uint(body["id"].(float64))
}

func (s *RoutesSuite) createPost(token string, categoryID uint, content string) uint {
	resp, body := s.do(http.MethodPost, fmt.Sprintf("/api/categories/%d/posts", categoryID), token, map[string]any{
		"content": content,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	return uint(body["id"].(float64))
}

func (s *RoutesSuite) TestHealth() {
	resp, body := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", body["status"])
}

func (s *RoutesSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/api/health", "", nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(raw), "sosusa_http_requests_total")
}

func (s *RoutesSuite) TestProtectedRoutesRequireToken() {
	resp, _ := s.do(http.MethodGet, "/api/feed", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/posts/1/report", "garbage", map[string]string{"reason": "spam"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RoutesSuite) TestAdminRoutesRejectRegularUsers() {
	token, _ := s.register("alice")

	resp, body := s.do(http.MethodGet, "/api/admin/users", token, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal(true, body["error"])
}

func (s *RoutesSuite) TestLoginWithUsernameOrEmail() {
	s.register("alice")

	resp, body := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "password123"})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(body["access_token"])

	resp, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice@example.com", "password": "password123"})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "wrong-password"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RoutesSuite) TestPostLifecycle() {
	token, _ := s.register("alice")
	categoryID := s.createCategory(token, "golang", false)

	resp, body := s.do(http.MethodPost, fmt.Sprintf("/api/categories/%d/follow", categoryID), token, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["following"])

	postID := s.createPost(token, categoryID, "hello gophers")

	resp, body = s.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["liked"])
	s.Equal(float64(1), body["count"])

	resp, _ = s.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), token, map[string]any{"content": "first"})
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", postID), "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(body["comments"], 1)

	resp, body = s.do(http.MethodGet, "/api/feed", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(body["posts"], 1)

	resp, body = s.do(http.MethodGet, "/api/search/posts?q=gophers", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(body["posts"], 1)

	resp, body = s.do(http.MethodGet, "/api/users/alice", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(body["posts"], 1)
	s.Equal(float64(1), body["follower_count"])
}

func (s *RoutesSuite) TestContentFilterRejectsPost() {
	token, _ := s.register("alice")
	categoryID := s.createCategory(token, "golang", false)

	resp, body := s.do(http.MethodPost, fmt.Sprintf("/api/categories/%d/posts", categoryID), token, map[string]any{
		"content": "heyyyyyyyy",
	})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.NotEmpty(body["message"])
}

func (s *RoutesSuite) TestReportAndModerateGroup() {
	authorToken, _ := s.register("alice")
	reporterToken, _ := s.register("bob")
	otherToken, _ := s.register("carol")
	adminToken, _ := s.register("admin")

	categoryID := s.createCategory(authorToken, "golang", false)
	postID := s.createPost(authorToken, categoryID, "hello gophers")

	path := fmt.Sprintf("/api/posts/%d/report", postID)
	resp, body := s.do(http.MethodPost, path, reporterToken, map[string]string{"reason": "spam"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	anchorID := uint(body["id"].(float64))

	resp, _ = s.do(http.MethodPost, path, reporterToken, map[string]string{"reason": "spam"})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, path, otherToken, map[string]string{"reason": "abuse"})
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/api/admin/reports/groups", adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	groups := body["groups"].([]any)
	s.Require().Len(groups, 1)
	s.Equal(float64(2), groups[0].(map[string]any)["count"])

	resp, body = s.do(http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/dismiss", anchorID), adminToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(2), body["affected"])

	resp, body = s.do(http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/undo", anchorID), adminToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(2), body["affected"])

	resp, body = s.do(http.MethodDelete, fmt.Sprintf("/api/admin/reports/%d/content", anchorID), adminToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(2), body["affected"])

	resp, _ = s.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/dismiss", anchorID), adminToken, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/admin/reports/999/dismiss", adminToken, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RoutesSuite) TestDeleteUserTargetIsRefused() {
	_, aliceID := s.register("alice")
	bobToken, _ := s.register("bob")
	adminToken, _ := s.register("admin")

	resp, body := s.do(http.MethodPost, "/api/users/"+aliceID+"/report", bobToken, map[string]string{"reason": "impersonation"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	reportID := uint(body["id"].(float64))

	resp, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/admin/reports/%d/content", reportID), adminToken, nil)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = s.do(http.MethodPut, "/api/admin/users/"+aliceID+"/ban", adminToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(false, body["is_active"])

	resp, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "password123"})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RoutesSuite) TestRestrictedCategoryAccessFlow() {
	ownerToken, _ := s.register("alice")
	userToken, _ := s.register("bob")
	adminToken, _ := s.register("admin")

	categoryID := s.createCategory(ownerToken, "press", true)
	resp, body := s.do(http.MethodPut, fmt.Sprintf("/api/admin/categories/%d/verify", categoryID), adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["is_verified"])

	postPath := fmt.Sprintf("/api/categories/%d/posts", categoryID)
	resp, _ = s.do(http.MethodPost, postPath, userToken, map[string]any{"content": "breaking news"})
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/api/categories/%d/status", categoryID), userToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(false, body["can_post"])

	requestPath := fmt.Sprintf("/api/categories/%d/access-requests", categoryID)
	resp, body = s.do(http.MethodPost, requestPath, userToken, map[string]string{"reason": "I am a reporter"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	requestID := uint(body["id"].(float64))

	resp, _ = s.do(http.MethodPost, requestPath, userToken, map[string]string{"reason": "again"})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, _ = s.do(http.MethodPut, fmt.Sprintf("/api/admin/access-requests/%d/reject", requestID), adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, body = s.do(http.MethodPost, requestPath, userToken, map[string]string{"reason": "please"})
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.Contains(body["message"], "day(s) remaining")

	s.Require().NoError(s.db.Model(&models.CategoryAccessRequest{}).
		Where("id = ?", requestID).Update("status", models.AccessApproved).Error)

	resp, _ = s.do(http.MethodPost, postPath, userToken, map[string]any{"content": "breaking news"})
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, postPath, adminToken, map[string]any{"content": "admins always can"})
	s.Equal(http.StatusCreated, resp.StatusCode)
}

func (s *RoutesSuite) TestCategoryGetIsPersonalizedWithToken() {
	token, _ := s.register("alice")
	categoryID := s.createCategory(token, "golang", false)
	path := fmt.Sprintf("/api/categories/%d", categoryID)

	resp, body := s.do(http.MethodGet, path, "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(false, body["is_following"])
	s.Equal(true, body["can_post"])

	s.do(http.MethodPost, path+"/follow", token, nil)
	resp, body = s.do(http.MethodGet, path, token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["is_following"])

	resp, _ = s.do(http.MethodGet, path, "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RoutesSuite) TestProfileUpdate() {
	token, _ := s.register("alice")

	resp, body := s.do(http.MethodPut, "/api/me/profile", token, map[string]string{"bio": "gopher"})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("gopher", body["bio"])

	resp, body = s.do(http.MethodGet, "/api/search/users?q=ali", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(body["users"], 1)
}

func (s *RoutesSuite) upload(path, token, filename string, content []byte) (*http.Response, map[string]any) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return s.send(req)
}

func (s *RoutesSuite) TestMediaUpload() {
	token, _ := s.register("alice")

	resp, body := s.upload("/api/media", token, "photo.png", []byte("fake png bytes"))
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	s.Equal(models.MediaTypeImage, body["media_type"])

	s.Contains(body["url"], "/uploads/posts/")
	stored, err := filepath.Glob(filepath.Join(s.cfg.UploadDir, "posts", "*.png"))
	s.Require().NoError(err)
	s.Len(stored, 1)

	resp, _ = s.upload("/api/media", token, "virus.exe", []byte("MZ"))
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.upload("/api/media/verification", token, "photo.png", []byte("not a pdf"))
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, body = s.upload("/api/media/verification", token, "press-card.pdf", []byte("%PDF-1.4"))
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Equal("Document", body["media_type"])

	big := bytes.Repeat([]byte("a"), int(s.cfg.MaxUploadBytes())+1)
	resp, _ = s.upload("/api/media/profile", token, "avatar.jpg", big)
	s.Equal(http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func (s *RoutesSuite) TestPostMediaMustBeUploadedHere() {
	token, _ := s.register("alice")
	categoryID := s.createCategory(token, "golang", false)
	path := fmt.Sprintf("/api/categories/%d/posts", categoryID)

	resp, body := s.upload("/api/media", token, "clip.mp4", []byte("fake mp4 bytes"))
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	uploaded := body["url"].(string)

	resp, body = s.do(http.MethodPost, path, token, map[string]any{
		"media": []map[string]string{{"path": uploaded, "type": models.MediaTypeImage}},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	media := body["media"].([]any)
	s.Require().Len(media, 1)
	s.Equal(models.MediaTypeVideo, media[0].(map[string]any)["media_type"])

	for _, external := range []string{"https://evil.example/x.exe", "https://evil.example/x.png", uploaded + ".exe"} {
		resp, _ = s.do(http.MethodPost, path, token, map[string]any{
			"media": []map[string]string{{"path": external, "type": models.MediaTypeImage}},
		})
		s.Equal(http.StatusBadRequest, resp.StatusCode, external)
	}
}

func (s *RoutesSuite) TestEditAndDeleteOwnPost() {
	authorToken, _ := s.register("alice")
	otherToken, _ := s.register("bob")
	adminToken, _ := s.register("admin")
	categoryID := s.createCategory(authorToken, "golang", false)
	postID := s.createPost(authorToken, categoryID, "hello gophers")
	path := fmt.Sprintf("/api/posts/%d", postID)

	resp, body := s.do(http.MethodPost, path+"/report", otherToken, map[string]string{"reason": "spam"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, body)
	reportID := uint(body["id"].(float64))

	resp, _ = s.do(http.MethodPut, path, "", map[string]string{"content": "edited"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(http.MethodPut, path, otherToken, map[string]string{"content": "hijacked"})
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(http.MethodPut, path, authorToken, map[string]string{"content": "hello again gophers"})
	s.Require().Equal(http.StatusOK, resp.StatusCode, body)
	s.Equal("hello again gophers", body["content"])

	resp, _ = s.do(http.MethodDelete, path, otherToken, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(http.MethodDelete, path, authorToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, body)
	s.Equal(float64(1), body["reports_resolved"])

	resp, _ = s.do(http.MethodGet, path, "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	var report models.Report
	s.Require().NoError(s.db.First(&report, reportID).Error)
	s.Equal(models.ReportResolved, report.Status)
	s.Nil(report.TargetID)

	resp, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/admin/reports/%d/content", reportID), adminToken, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func TestErrorHandlerHidesServerErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return fmt.Errorf("db exploded") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotContains(t, string(raw), "exploded")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil), -1)
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
	require.Contains(t, string(raw), "short and stout")
}
