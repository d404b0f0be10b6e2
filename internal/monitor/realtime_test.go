package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "authpulse/internal/db"
)

func TestBuildSnapshotCounts(t *testing.T) {
	cutoff := ts("2024-06-01T11:55:00Z")
	events := []dbpkg.AuthMetric{
		{Event: dbpkg.EventLogin, Success: true, Timestamp: ts("2024-06-01T11:30:00Z")},
		{Event: dbpkg.EventLogin, Success: true, Timestamp: ts("2024-06-01T11:58:00Z"), DurationMs: ptrInt64(200)},
		{Event: dbpkg.EventLogin, Success: false, Timestamp: ts("2024-06-01T11:40:00Z")},
		{Event: dbpkg.EventSignup, Success: false, Timestamp: ts("2024-06-01T11:45:00Z")},
	}

	snap := buildSnapshot(events, cutoff)

	assert.Equal(t, 2, snap.RecentLogins)
	assert.Equal(t, 2, snap.RecentErrors)
	assert.Equal(t, 200.0, snap.AverageResponseTime)
}

func TestBuildSnapshotResponseTimeWindowIsFiveMinutes(t *testing.T) {
	cutoff := ts("2024-06-01T11:55:00Z")
	events := []dbpkg.AuthMetric{
		// In the hour window but outside the five-minute one: counted
		// as a login, excluded from the response-time mean.
		{Event: dbpkg.EventLogin, Success: true, Timestamp: ts("2024-06-01T11:10:00Z"), DurationMs: ptrInt64(9000)},
		{Event: dbpkg.EventLogin, Success: true, Timestamp: ts("2024-06-01T11:56:00Z"), DurationMs: ptrInt64(100)},
		{Event: dbpkg.EventSessionRefresh, Success: true, Timestamp: ts("2024-06-01T11:59:00Z"), DurationMs: ptrInt64(300)},
	}

	snap := buildSnapshot(events, cutoff)

	assert.Equal(t, 2, snap.RecentLogins)
	assert.Equal(t, 200.0, snap.AverageResponseTime)
}

func TestBuildSnapshotEmpty(t *testing.T) {
	snap := buildSnapshot(nil, ts("2024-06-01T11:55:00Z"))

	assert.Equal(t, 0, snap.RecentLogins)
	assert.Equal(t, 0, snap.RecentErrors)
	assert.Equal(t, 0.0, snap.AverageResponseTime)
}

func TestGetRealTimeMetrics(t *testing.T) {
	mon, mock, _ := newTestMonitor(t)
	mon.now = fixedClock(ts("2024-06-01T12:00:00Z"))

	// Both windows anchor one hour back from the injected clock; the
	// bound is asserted so an event from two hours ago can never leak in.
	hourAgo := ts("2024-06-01T11:00:00Z")

	metricRows := sqlmock.NewRows([]string{"event", "success", "duration_ms", "timestamp"}).
		AddRow("login", true, int64(150), ts("2024-06-01T11:58:00Z")).
		AddRow("login", false, nil, ts("2024-06-01T11:20:00Z"))
	mock.ExpectQuery(`SELECT (.+) FROM "auth_metrics"`).
		WithArgs(hourAgo).
		WillReturnRows(metricRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(int64(3))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT\("user_id"\)\) FROM "session_events"`).
		WithArgs(hourAgo).
		WillReturnRows(countRows)

	snap, err := mon.GetRealTimeMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, snap.RecentLogins)
	assert.Equal(t, 1, snap.RecentErrors)
	assert.Equal(t, 150.0, snap.AverageResponseTime)
	assert.Equal(t, 3, snap.ActiveUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRealTimeMetricsReadFailurePropagates(t *testing.T) {
	mon, mock, _ := newTestMonitor(t)

	mock.ExpectQuery(`SELECT (.+) FROM "auth_metrics"`).WillReturnError(errors.New("connection refused"))

	_, err := mon.GetRealTimeMetrics(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query recent auth metrics")
}
