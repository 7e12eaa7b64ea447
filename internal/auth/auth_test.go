package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventika/venue-api/internal/config"
	"github.com/eventika/venue-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.APIKey{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestHandleMe(t *testing.T) {
	db := setupDB(t)

	owner := models.User{DiscordID: "123456", Username: "mario"}
	guest := models.User{DiscordID: "999", Username: "guest"}
	db.Create(&owner)
	db.Create(&guest)

	cfg := &config.Config{JWTSecret: "test-secret", OwnerDiscordID: "123456"}
	handler := NewAuthHandler(cfg, db, nil)

	t.Run("Owner", func(t *testing.T) {
		token, _ := handler.GenerateToken(owner.ID)
		resp, err := handler.HandleMe(context.Background(), &AuthInput{Cookie: "auth_token=" + token})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.User == nil || resp.Body.User.Username != "mario" {
			t.Fatalf("expected user mario, got %+v", resp.Body.User)
		}
		if !resp.Body.IsOwner {
			t.Error("expected owner flag")
		}
	})

	t.Run("NotOwner", func(t *testing.T) {
		token, _ := handler.GenerateToken(guest.ID)
		resp, err := handler.HandleMe(context.Background(), &AuthInput{Cookie: "lang=sv; auth_token=" + token})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.User == nil || resp.Body.User.Subject != "999" {
			t.Fatalf("expected guest user, got %+v", resp.Body.User)
		}
		if resp.Body.IsOwner {
			t.Error("guest must not be owner")
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		resp, err := handler.HandleMe(context.Background(), &AuthInput{})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.User != nil {
			t.Errorf("expected null user, got %+v", resp.Body.User)
		}
	})

	t.Run("ForgedToken", func(t *testing.T) {
		other := NewAuthHandler(&config.Config{JWTSecret: "other-secret"}, db, nil)
		token, _ := other.GenerateToken(owner.ID)
		resp, _ := handler.HandleMe(context.Background(), &AuthInput{Cookie: "auth_token=" + token})
		if resp.Body.User != nil {
			t.Error("token signed with another secret must not identify anyone")
		}
	})
}

func TestAuthorize(t *testing.T) {
	db := setupDB(t)
	user := models.User{DiscordID: "42", Username: "op"}
	db.Create(&user)

	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret", OwnerDiscordID: "42"}, db, nil)

	t.Run("Anonymous", func(t *testing.T) {
		if _, err := handler.Authorize(context.Background(), AuthInput{}); err == nil {
			t.Fatal("expected error for anonymous caller")
		}
	})

	t.Run("APIKey", func(t *testing.T) {
		db.Create(&models.APIKey{UserID: user.ID, KeyHash: HashAPIKey("evk_live"), Name: "script"})

		id, err := handler.RequireOwner(context.Background(), AuthInput{APIKey: "evk_live"})
		if err != nil {
			t.Fatalf("RequireOwner failed: %v", err)
		}
		if id.Subject != "42" {
			t.Errorf("expected subject 42, got %s", id.Subject)
		}

		var key models.APIKey
		db.Where("key_hash = ?", HashAPIKey("evk_live")).First(&key)
		if key.LastUsedAt == nil {
			t.Error("expected last_used_at to be recorded")
		}
	})

	t.Run("ExpiredAPIKey", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		db.Create(&models.APIKey{UserID: user.ID, KeyHash: HashAPIKey("evk_old"), ExpiresAt: &past})

		if _, err := handler.Authorize(context.Background(), AuthInput{APIKey: "evk_old"}); err == nil {
			t.Fatal("expected expired key to be rejected")
		}
	})

	t.Run("UnknownAPIKey", func(t *testing.T) {
		if _, err := handler.Authorize(context.Background(), AuthInput{APIKey: "nope"}); err == nil {
			t.Fatal("expected unknown key to be rejected")
		}
	})
}

func TestOwnerPolicy(t *testing.T) {
	p := OwnerPolicy{OwnerID: "owner-1"}

	if p.IsOwner(nil) {
		t.Error("anonymous is never owner")
	}
	if p.IsOwner(&Identity{Subject: "owner-2"}) {
		t.Error("other subject must not be owner")
	}
	if !p.IsOwner(&Identity{Subject: "owner-1"}) {
		t.Error("configured subject must be owner")
	}
	if (OwnerPolicy{}).IsOwner(&Identity{Subject: ""}) {
		t.Error("unconfigured policy grants nobody")
	}
}

func TestEmptySecret(t *testing.T) {
	db := setupDB(t)
	owner := models.User{DiscordID: "123456", Username: "mario"}
	db.Create(&owner)

	handler := NewAuthHandler(&config.Config{OwnerDiscordID: "123456"}, db, nil)

	if _, err := handler.GenerateToken(owner.ID); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}

	// A token signed with an empty key must not be accepted either.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": owner.ID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(""))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if _, _, err := handler.ParseToken(forged); err == nil {
		t.Error("expected ParseToken to reject tokens when no secret is configured")
	}

	resp, _ := handler.HandleMe(context.Background(), &AuthInput{Cookie: "auth_token=" + forged})
	if resp.Body.User != nil || resp.Body.IsOwner {
		t.Errorf("expected anonymous response, got %+v", resp.Body)
	}
}

func TestAPIKeyUseNotRecorded(t *testing.T) {
	db := setupDB(t)
	user := models.User{DiscordID: "42", Username: "op"}
	db.Create(&user)
	db.Create(&models.APIKey{UserID: user.ID, KeyHash: HashAPIKey("evk_live"), Name: "script"})

	db.Callback().Update().Before("gorm:update").Register("test:fail_update", func(tx *gorm.DB) {
		tx.AddError(errors.New("database is read-only"))
	})

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret", OwnerDiscordID: "42"}, db, log)

	id, err := handler.Authorize(context.Background(), AuthInput{APIKey: "evk_live"})
	if err != nil {
		t.Fatalf("a failed last-used update must not reject the key: %v", err)
	}
	if id.Subject != "42" {
		t.Errorf("expected subject 42, got %s", id.Subject)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.DebugLevel || entry.Message != "failed to record api key use" {
		t.Errorf("expected a debug entry for the failed update, got %+v", entry)
	}
}
