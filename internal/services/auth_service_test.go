package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		AdminEmails:      "boss@example.com",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Username: "rosa", Email: "Rosa@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "rosa@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)

	claims, err := ParseAccessToken(cfg.JWTSecret, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, "rosa", claims["username"])

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "ROSA", Email: "other@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "rosa2", Email: "rosa@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "sam", Email: "sam@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "rosa", Password: "password1"})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "rosa@example.com", Password: "password1"})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "rosa", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterGrantsAdminRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Username: "admin", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)

	resp, err = svc.Register(ctx, &dto.RegisterRequest{Username: "boss", Email: "boss@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestSuspendedUserRejectedBeforePasswordCheck(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Username: "tess", Email: "tess@example.com", Password: "password1"})
	require.NoError(t, err)
	_, err = NewAdminService(db).ToggleUserBan(ctx, resp.User.ID)
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "tess", Password: "password1"})
	assert.ErrorIs(t, err, ErrAccountSuspended)
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "tess", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrAccountSuspended)

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRotationAndLogout(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Username: "uma", Email: "uma@example.com", Password: "password1"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, &dto.LogoutRequest{RefreshToken: rotated.RefreshToken}))
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewAuthService(db, testConfig()).WithClock(fixedClock(time.Now().Add(2 * time.Hour)))
	fresh, err := svc.Login(ctx, &dto.LoginRequest{Username: "uma", Password: "password1"})
	require.NoError(t, err)
	_, err = expired.Refresh(ctx, &dto.RefreshRequest{RefreshToken: fresh.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Username: "vic", Email: "vic@example.com", Password: "password1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, resp.User.ID, "nope-nope", "password2"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, resp.User.ID, "password1", "short"), ErrWeakPassword)
	require.NoError(t, svc.ChangePassword(ctx, resp.User.ID, "password1", "password2"))

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "vic", Password: "password2"})
	assert.NoError(t, err)
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
