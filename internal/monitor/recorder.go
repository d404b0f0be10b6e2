package monitor

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	dbpkg "authpulse/internal/db"
)

// Metric is the recorder-side view of one auth occurrence. A zero
// Timestamp means "assign at record time"; callers outside replay
// tooling should leave it zero.
type Metric struct {
	Event        string
	UserID       string
	Email        string
	Provider     string
	DurationMs   *int64
	Success      bool
	ErrorType    string
	ErrorMessage string
	UserAgent    string
	IPAddress    string
	Timestamp    time.Time
	Metadata     map[string]any
}

// ErrorContext carries the request context for RecordError.
type ErrorContext struct {
	UserID    string
	Email     string
	Operation string
	UserAgent string
	IPAddress string
	Metadata  map[string]any
}

// RecordMetric appends one AuthMetric row. Persistence failures are
// logged and swallowed: auth must never fail because telemetry failed.
func (m *Monitor) RecordMetric(ctx context.Context, metric Metric) {
	row := dbpkg.AuthMetric{
		Event:        metric.Event,
		UserID:       metric.UserID,
		Email:        metric.Email,
		Provider:     metric.Provider,
		DurationMs:   metric.DurationMs,
		Success:      metric.Success,
		ErrorType:    metric.ErrorType,
		ErrorMessage: metric.ErrorMessage,
		UserAgent:    metric.UserAgent,
		IPAddress:    metric.IPAddress,
		Timestamp:    metric.Timestamp,
		Metadata:     m.sanitizeMetadata(metric.Metadata),
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = m.now().UTC()
	}

	observeEvent(metric)

	if err := m.db.WithContext(ctx).Create(&row).Error; err != nil {
		m.log.WithError(err).WithField("event", metric.Event).Error("failed to record auth metric")
	}
}

// RecordSessionEvent appends one session lifecycle transition. Same
// fail-open contract as RecordMetric.
func (m *Monitor) RecordSessionEvent(ctx context.Context, sessionID, userID, action string, metadata map[string]any) {
	row := dbpkg.SessionEvent{
		SessionID: sessionID,
		UserID:    userID,
		Action:    action,
		Timestamp: m.now().UTC(),
		Metadata:  m.sanitizeMetadata(metadata),
	}

	if err := m.db.WithContext(ctx).Create(&row).Error; err != nil {
		m.log.WithError(err).WithFields(map[string]any{
			"session_id": sessionID,
			"action":     action,
		}).Error("failed to record session event")
	}
}

// RecordError appends an AuthError row and a derived failed AuthMetric.
// The two appends are independent and individually fail-open; no
// transaction spans them, so the tables can diverge if one write fails.
// That gap is deliberate: both rows are best-effort telemetry.
func (m *Monitor) RecordError(ctx context.Context, err error, ectx ErrorContext) {
	if err == nil {
		return
	}
	kind := KindOf(err)

	row := dbpkg.AuthError{
		ErrorType:    string(kind),
		ErrorMessage: err.Error(),
		StackTrace:   StackOf(err),
		UserID:       ectx.UserID,
		Email:        ectx.Email,
		Operation:    ectx.Operation,
		UserAgent:    ectx.UserAgent,
		IPAddress:    ectx.IPAddress,
		Timestamp:    m.now().UTC(),
		Metadata:     m.sanitizeMetadata(ectx.Metadata),
	}
	if dbErr := m.db.WithContext(ctx).Create(&row).Error; dbErr != nil {
		m.log.WithError(dbErr).WithField("operation", ectx.Operation).Error("failed to record auth error")
	}

	m.RecordMetric(ctx, Metric{
		Event:        dbpkg.EventError,
		UserID:       ectx.UserID,
		Email:        ectx.Email,
		Success:      false,
		ErrorType:    string(kind),
		ErrorMessage: err.Error(),
		UserAgent:    ectx.UserAgent,
		IPAddress:    ectx.IPAddress,
		Metadata:     ectx.Metadata,
	})
}

// sanitizeMetadata converts caller metadata into the JSON column value.
// Non-serializable metadata is dropped with an error log rather than
// silently truncated mid-write; the event itself is still recorded.
func (m *Monitor) sanitizeMetadata(md map[string]any) datatypes.JSONMap {
	if len(md) == 0 {
		return nil
	}
	if _, err := json.Marshal(md); err != nil {
		m.log.WithError(err).Error("auth event metadata is not JSON-serializable, dropping it")
		return nil
	}
	out := make(datatypes.JSONMap, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
