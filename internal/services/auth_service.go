package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{3,50}$`)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
	now Clock
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg, now: systemClock}
}

func (s *AuthService) WithClock(now Clock) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !usernamePattern.MatchString(username) || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&count).Error; err != nil {
		return nil, storageError("register", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, storageError("register", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleUser
	if strings.EqualFold(username, "admin") || s.isAdminEmail(email) {
		role = models.RoleAdmin
	}

	user := models.User{
		Username:    username,
		Email:       email,
		Password:    string(hash),
		Role:        role,
		DisplayName: username,
		IsActive:    true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, storageError("register", err, "username", username)
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) isAdminEmail(email string) bool {
	for _, e := range strings.Split(s.cfg.AdminEmails, ",") {
		if e = strings.TrimSpace(e); e != "" && strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// Login accepts a username or email. Suspended accounts are refused before
// the password is checked.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	login := strings.TrimSpace(req.Username)
	var user models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("login", err)
	}

	if !user.IsActive {
		return nil, ErrAccountSuspended
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if s.now().After(stored.ExpiresAt) {
		db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	if err := db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, storageError("refresh", err, "user_id", stored.UserID)
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrAccountSuspended
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
	if err != nil {
		return storageError("logout", err)
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < 8 {
		return ErrWeakPassword
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return storageError("change_password", err, "user_id", userID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return finish("change_password", db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", string(hash)).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Update("revoked", true).Error
	}), "user_id", userID)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", storageError("store_refresh_token", err, "user_id", user.ID)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

// ParseAccessToken validates an access token issued by this service.
func ParseAccessToken(secret, raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired(), jwt.WithLeeway(5*time.Second))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}
