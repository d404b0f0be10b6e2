package db

import (
	"time"
)

// User represents a dashboard operator that can sign in to the admin UI
// and own reporter API keys. The bootstrap admin user (from env) is
// created as a row in this table on startup.
type User struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	// IsAdmin marks operators that can manage reporter keys. The
	// bootstrap admin has IsAdmin=true.
	IsAdmin bool `gorm:"default:false"`
}
