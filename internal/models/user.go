package models

import (
	"time"

	"gorm.io/gorm"
)

// User is anyone who signed in through Discord. Only the configured
// owner gets write access to the calendar.
type User struct {
	gorm.Model
	DiscordID   string `gorm:"uniqueIndex"`
	Username    string
	Email       string
	Avatar      string
	LastLoginAt *time.Time
}
