package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "authpulse/internal/db"
)

func TestRecordMetricNeverRaises(t *testing.T) {
	mon, mock, hook := newTestMonitor(t)

	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnError(errors.New("store unreachable"))

	require.NotPanics(t, func() {
		mon.RecordMetric(context.Background(), Metric{
			Event:   dbpkg.EventLogin,
			Success: true,
		})
	})

	// The failure is visible to operators, just never to the caller.
	require.NotEmpty(t, hook.Entries)
	last := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, last.Level)
	assert.Contains(t, last.Message, "failed to record auth metric")
}

func TestRecordMetricAppends(t *testing.T) {
	mon, mock, hook := newTestMonitor(t)
	mon.now = fixedClock(ts("2024-06-01T12:00:00Z"))

	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnResult(sqlmock.NewResult(0, 1))

	mon.RecordMetric(context.Background(), Metric{
		Event:      dbpkg.EventLogin,
		UserID:     "user-1",
		Provider:   "google",
		DurationMs: ptrInt64(120),
		Success:    true,
	})

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, hook.Entries)
}

func TestRecordSessionEventNeverRaises(t *testing.T) {
	mon, mock, hook := newTestMonitor(t)

	mock.ExpectExec(`INSERT INTO "session_events"`).WillReturnError(errors.New("store unreachable"))

	require.NotPanics(t, func() {
		mon.RecordSessionEvent(context.Background(), "sess-1", "user-1", dbpkg.SessionCreated, nil)
	})

	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRecordErrorDualWrite(t *testing.T) {
	mon, mock, _ := newTestMonitor(t)

	mock.ExpectExec(`INSERT INTO "auth_errors"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnResult(sqlmock.NewResult(0, 1))

	failure := NewFailure(KindInvalidCredentials, "login", errors.New("bad password"))
	mon.RecordError(context.Background(), failure, ErrorContext{
		UserID:    "user-1",
		Operation: "login",
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordErrorWritesAreIndependent(t *testing.T) {
	// The first append succeeding and the second failing leaves an
	// AuthError row without its derived metric. That divergence is the
	// documented behavior, and neither failure reaches the caller.
	mon, mock, hook := newTestMonitor(t)

	mock.ExpectExec(`INSERT INTO "auth_errors"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnError(errors.New("store unreachable"))

	failure := NewFailure(KindProviderError, "auth_callback", errors.New("upstream 500"))
	require.NotPanics(t, func() {
		mon.RecordError(context.Background(), failure, ErrorContext{Operation: "auth_callback"})
	})

	assert.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, hook.Entries, 1)
	assert.Contains(t, hook.LastEntry().Message, "failed to record auth metric")
}

func TestRecordErrorNilIsNoop(t *testing.T) {
	mon, mock, hook := newTestMonitor(t)

	mon.RecordError(context.Background(), nil, ErrorContext{})

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, hook.Entries)
}

func TestSanitizeMetadataDropsUnserializable(t *testing.T) {
	mon, _, hook := newTestMonitor(t)

	out := mon.sanitizeMetadata(map[string]any{"ch": make(chan int)})

	assert.Nil(t, out)
	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestSanitizeMetadataKeepsValid(t *testing.T) {
	mon, _, hook := newTestMonitor(t)

	out := mon.sanitizeMetadata(map[string]any{"path": "/dashboard", "attempt": 2})

	require.NotNil(t, out)
	assert.Equal(t, "/dashboard", out["path"])
	assert.Empty(t, hook.Entries)
}
