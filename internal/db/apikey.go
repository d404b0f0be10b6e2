package db

import (
	"time"
)

// APIKey is a bearer token that authorizes an external reporter (the
// StrathSpace web app, a worker, a staging deployment) to push auth
// events into the ingest endpoints. Each key belongs to an operator.
type APIKey struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// UserID links this key to the operator who owns it.
	UserID uint `gorm:"index;not null"`

	// Name is a user-friendly identifier for the reporter (e.g. "strathspace-web").
	Name string `gorm:"size:128;not null"`

	// Source labels where the reports come from (production, staging, bootstrap).
	Source string `gorm:"size:32;not null"`

	// Key is the actual bearer token value (stored as-is, should be unique).
	Key string `gorm:"uniqueIndex;size:255;not null"`

	// Active indicates whether this key is currently enabled.
	Active bool `gorm:"default:true"`

	// User is the owner of this API key.
	User User `gorm:"foreignKey:UserID"`
}
