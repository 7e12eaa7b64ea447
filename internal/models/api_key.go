package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey lets the owner script calendar changes without a browser
// session. Only the SHA-256 of the key is stored; Prefix is kept for
// display.
type APIKey struct {
	gorm.Model
	UserID     uint       `json:"user_id"`
	User       User       `json:"-"`
	KeyHash    string     `json:"-" gorm:"uniqueIndex"`
	Prefix     string     `json:"prefix"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
