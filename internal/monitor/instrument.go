package monitor

import (
	"context"

	dbpkg "authpulse/internal/db"
)

// Instrument runs fn, timing it, and records the outcome through the
// recorder: a performance metric always, plus an error record when fn
// fails. fn's return value is passed through unchanged; the wrapper
// never substitutes or suppresses an error, and recording failures stay
// invisible to the caller like every other recorder write.
func (m *Monitor) Instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := m.now()
	err := fn(ctx)
	durationMs := m.now().Sub(start).Milliseconds()

	metric := Metric{
		Event:      eventForOperation(operation),
		DurationMs: &durationMs,
		Success:    err == nil,
		Metadata:   map[string]any{"operation": operation},
	}
	if err != nil {
		metric.ErrorType = string(KindOf(err))
		metric.ErrorMessage = err.Error()
	}
	m.RecordMetric(ctx, metric)

	if err != nil {
		m.RecordError(ctx, err, ErrorContext{Operation: operation})
	}

	return err
}

// eventForOperation maps an instrumented operation name onto the metric
// event taxonomy. Unrecognized operations are recorded as login-class
// performance samples carrying the operation name in metadata.
func eventForOperation(op string) string {
	switch op {
	case "signup":
		return dbpkg.EventSignup
	case "logout":
		return dbpkg.EventLogout
	case "session_refresh":
		return dbpkg.EventSessionRefresh
	default:
		return dbpkg.EventLogin
	}
}
