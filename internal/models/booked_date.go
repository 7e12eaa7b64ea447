package models

import (
	"time"
)

// BookedDate marks one calendar day as unavailable. Date is the
// YYYY-MM-DD key and is unique.
type BookedDate struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Date        string    `json:"date" gorm:"size:10;uniqueIndex;not null"`
	Note        *string   `json:"note" gorm:"size:48"`
	CreatedByID *uint     `json:"createdBy"`
	CreatedBy   *User     `json:"-" gorm:"foreignKey:CreatedByID"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type BookedDateAction string

const (
	BookedDateAdded   BookedDateAction = "added"
	BookedDateUpdated BookedDateAction = "updated"
	BookedDateRemoved BookedDateAction = "removed"
)

// BookedDateHistory is an append-only record of ledger changes.
type BookedDateHistory struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	Action    BookedDateAction `json:"action" gorm:"size:16"`
	Date      string           `json:"date" gorm:"size:10;index"`
	Note      *string          `json:"note" gorm:"size:48"`
	ActorID   uint             `json:"actorId"`
	CreatedAt time.Time        `json:"createdAt"`
}
