package monitor

import (
	"context"
	"fmt"
	"time"

	dbpkg "authpulse/internal/db"
)

const (
	activityWindow = time.Hour
	responseWindow = 5 * time.Minute
)

// RealTimeSnapshot is the dashboard "pulse": trailing-window metrics
// anchored at now, recomputed from scratch on every call.
type RealTimeSnapshot struct {
	ActiveUsers         int     `json:"activeUsers"`
	RecentLogins        int     `json:"recentLogins"`
	RecentErrors        int     `json:"recentErrors"`
	AverageResponseTime float64 `json:"averageResponseTime"`
}

// GetRealTimeMetrics computes the snapshot: successful logins and
// failures over the trailing hour, mean response time over the trailing
// five minutes, and distinct users with any session activity in the
// trailing hour. Lookback is bounded, so a full recompute per call
// stays cheap as long as timestamp is indexed.
func (m *Monitor) GetRealTimeMetrics(ctx context.Context) (RealTimeSnapshot, error) {
	now := m.now().UTC()
	hourAgo := now.Add(-activityWindow)
	fiveMinAgo := now.Add(-responseWindow)

	var events []dbpkg.AuthMetric
	err := m.db.WithContext(ctx).
		Select("event", "success", "duration_ms", "timestamp").
		Where("timestamp >= ?", hourAgo).
		Find(&events).Error
	if err != nil {
		return RealTimeSnapshot{}, fmt.Errorf("query recent auth metrics: %w", err)
	}

	snap := buildSnapshot(events, fiveMinAgo)

	var active int64
	err = m.db.WithContext(ctx).
		Model(&dbpkg.SessionEvent{}).
		Where("timestamp >= ?", hourAgo).
		Distinct("user_id").
		Count(&active).Error
	if err != nil {
		return RealTimeSnapshot{}, fmt.Errorf("count active users: %w", err)
	}
	snap.ActiveUsers = int(active)

	return snap, nil
}

func buildSnapshot(events []dbpkg.AuthMetric, responseCutoff time.Time) RealTimeSnapshot {
	var snap RealTimeSnapshot
	var durSum int64
	var durN int

	for i := range events {
		e := &events[i]
		if e.Event == dbpkg.EventLogin && e.Success {
			snap.RecentLogins++
		}
		if !e.Success {
			snap.RecentErrors++
		}
		if e.DurationMs != nil && !e.Timestamp.Before(responseCutoff) {
			durSum += *e.DurationMs
			durN++
		}
	}

	if durN > 0 {
		snap.AverageResponseTime = float64(durSum) / float64(durN)
	}
	return snap
}
