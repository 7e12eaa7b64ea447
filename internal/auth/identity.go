package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/eventika/venue-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AuthInput is embedded in every operation that needs to know the caller.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie (auth_token)"`
	APIKey string `header:"X-API-KEY" doc:"Owner API key"`
}

// Identity is an authenticated caller. Subject is the Discord user ID.
type Identity struct {
	UserID   uint
	Subject  string
	Username string
}

// OwnerPolicy grants owner rights to exactly one configured subject.
// An empty OwnerID grants them to nobody.
type OwnerPolicy struct {
	OwnerID string
}

func (p OwnerPolicy) IsOwner(id *Identity) bool {
	return id != nil && p.OwnerID != "" && id.Subject == p.OwnerID
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingSecret      = errors.New("session signing secret is not configured")
)

// Identify resolves the caller from an API key or the session cookie.
// It returns a nil Identity and no error for anonymous callers.
func (h *AuthHandler) Identify(ctx context.Context, input AuthInput) (*Identity, error) {
	if input.APIKey != "" {
		return h.identifyAPIKey(ctx, input.APIKey)
	}

	token := sessionToken(input.Cookie)
	if token == "" {
		return nil, nil
	}

	userID, _, err := h.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return h.loadIdentity(ctx, userID)
}

// Authorize is Identify for operations that require a signed-in caller.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (*Identity, error) {
	id, err := h.Identify(ctx, input)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, huma.Error401Unauthorized("Unauthorized: Invalid credentials")
		}
		return nil, huma.Error500InternalServerError("Failed to resolve identity")
	}
	if id == nil {
		return nil, huma.Error401Unauthorized("Unauthorized: No token found")
	}
	return id, nil
}

// RequireOwner is Authorize followed by the owner check.
func (h *AuthHandler) RequireOwner(ctx context.Context, input AuthInput) (*Identity, error) {
	id, err := h.Authorize(ctx, input)
	if err != nil {
		return nil, err
	}
	if !h.policy.IsOwner(id) {
		return nil, huma.Error403Forbidden("Access denied: only the owner can do this")
	}
	return id, nil
}

func (h *AuthHandler) Policy() OwnerPolicy { return h.policy }

func (h *AuthHandler) identifyAPIKey(ctx context.Context, key string) (*Identity, error) {
	var keyModel models.APIKey
	err := h.db.WithContext(ctx).Where("key_hash = ?", HashAPIKey(key)).First(&keyModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("look up api key: %w", err)
	}

	now := time.Now()
	if keyModel.ExpiresAt != nil && now.After(*keyModel.ExpiresAt) {
		return nil, ErrInvalidCredentials
	}
	if err := h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", now).Error; err != nil {
		h.log.WithError(err).WithField("key_id", keyModel.ID).Debug("failed to record api key use")
	}

	return h.loadIdentity(ctx, keyModel.UserID)
}

func (h *AuthHandler) loadIdentity(ctx context.Context, userID uint) (*Identity, error) {
	var user models.User
	err := h.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &Identity{UserID: user.ID, Subject: user.DiscordID, Username: user.Username}, nil
}

// HashAPIKey is the stored form of an API key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func sessionToken(cookieHeader string) string {
	if cookieHeader == "" {
		return ""
	}
	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == CookieName {
			return c.Value
		}
	}
	return ""
}

// ParseToken validates a session JWT and returns its user ID and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (uint, time.Time, error) {
	if h.cfg.JWTSecret == "" {
		return 0, time.Time{}, ErrInvalidCredentials
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, time.Time{}, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, ErrInvalidCredentials
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, time.Time{}, ErrInvalidCredentials
	}
	var exp time.Time
	if e, err := claims.GetExpirationTime(); err == nil && e != nil {
		exp = e.Time
	}
	return uint(userIDFloat), exp, nil
}
