package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event kinds recorded in AuthMetric rows.
const (
	EventLogin          = "login"
	EventLogout         = "logout"
	EventSignup         = "signup"
	EventError          = "error"
	EventSessionRefresh = "session_refresh"
)

// Session lifecycle actions recorded in SessionEvent rows.
const (
	SessionCreated   = "created"
	SessionRefreshed = "refreshed"
	SessionExpired   = "expired"
	SessionRevoked   = "revoked"
)

// AuthMetric is one auth-related occurrence (login, logout, signup,
// error, session_refresh). Rows are append-only: they are never updated
// or deleted by the application, only aged out by the retention worker.
//
// The indexes mirror the aggregator's access patterns: range scans by
// timestamp plus equality filters on event, success, provider and user.
type AuthMetric struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Event    string `gorm:"size:32;index;not null"`
	UserID   string `gorm:"index"`
	Email    string
	Provider string `gorm:"size:64;index"`

	// DurationMs is only set for events with a measurable latency.
	DurationMs *int64

	Success      bool `gorm:"index;not null"`
	ErrorType    string
	ErrorMessage string

	UserAgent string
	IPAddress string

	// Timestamp is assigned by the recorder at write time, never by the
	// caller, so ordering by it reflects arrival order.
	Timestamp time.Time `gorm:"index;not null"`

	Metadata datatypes.JSONMap `gorm:"type:json"`
}

func (m *AuthMetric) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SessionEvent is one session state transition. For a healthy session
// the actions for one session_id form a chain: created, zero or more
// refreshed, then exactly one expired or revoked. Nothing here enforces
// that chain; it is a consumer-side expectation.
type SessionEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// SessionID is not globally unique across users over time; pair it
	// with UserID when following a single session.
	SessionID string `gorm:"index;not null"`
	UserID    string `gorm:"index;not null"`
	Action    string `gorm:"size:16;index;not null"`

	Timestamp time.Time `gorm:"index;not null"`

	Metadata datatypes.JSONMap `gorm:"type:json"`
}

func (s *SessionEvent) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AuthError is one captured failure during an auth operation, with more
// context than the derived AuthMetric row the recorder writes alongside
// it. The two tables are linked by convention (matching error_type and
// message), not by foreign key: the dual write is not transactional and
// they can diverge if one append fails.
type AuthError struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ErrorType    string `gorm:"index;not null"`
	ErrorMessage string `gorm:"not null"`
	StackTrace   string

	UserID    string `gorm:"index"`
	Email     string
	Operation string `gorm:"size:64;index"`

	UserAgent string
	IPAddress string

	Timestamp time.Time `gorm:"index;not null"`

	Metadata datatypes.JSONMap `gorm:"type:json"`
}

func (e *AuthError) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
