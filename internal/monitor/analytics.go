package monitor

import (
	"context"
	"fmt"
	"sort"
	"time"

	dbpkg "authpulse/internal/db"
)

// unknownLabel is what null/missing providers and error types group
// under in the analytics report.
const unknownLabel = "Unknown"

type ErrorTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type ProviderCount struct {
	Provider string `json:"provider"`
	Count    int    `json:"count"`
}

type DailyStat struct {
	Date    string `json:"date"`
	Logins  int    `json:"logins"`
	Signups int    `json:"signups"`
	Errors  int    `json:"errors"`
}

// Analytics is the derived report for one date range. It is computed on
// demand and never persisted.
type Analytics struct {
	TotalLogins          int              `json:"totalLogins"`
	TotalSignups         int              `json:"totalSignups"`
	TotalErrors          int              `json:"totalErrors"`
	AverageLoginDuration float64          `json:"averageLoginDuration"`
	SuccessRate          float64          `json:"successRate"`
	TopErrorTypes        []ErrorTypeCount `json:"topErrorTypes"`
	LoginsByProvider     []ProviderCount  `json:"loginsByProvider"`
	DailyStats           []DailyStat      `json:"dailyStats"`
}

// GetAnalytics computes the report for the closed interval [start, end].
// A single range query feeds every sub-aggregation so all stats in one
// report describe the same set of events. An empty range (including
// start > end) yields an all-zero report, not an error; a failed read
// propagates, unlike recorder writes.
func (m *Monitor) GetAnalytics(ctx context.Context, start, end time.Time) (Analytics, error) {
	var events []dbpkg.AuthMetric
	err := m.db.WithContext(ctx).
		Select("event", "provider", "duration_ms", "success", "error_type", "timestamp").
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp").
		Find(&events).Error
	if err != nil {
		return Analytics{}, fmt.Errorf("query auth metrics: %w", err)
	}

	return buildAnalytics(events), nil
}

// buildAnalytics folds one pass over the filtered events into the
// report. Daily rollups use the UTC calendar day of each event's own
// timestamp; a day appears as soon as any event of any kind fell on it.
func buildAnalytics(events []dbpkg.AuthMetric) Analytics {
	a := Analytics{
		TopErrorTypes:    []ErrorTypeCount{},
		LoginsByProvider: []ProviderCount{},
		DailyStats:       []DailyStat{},
	}
	if len(events) == 0 {
		return a
	}

	var successful int
	var loginDurSum int64
	var loginDurN int

	errCounts := make(map[string]int)
	var errOrder []string
	provCounts := make(map[string]int)
	var provOrder []string
	days := make(map[string]*DailyStat)

	for i := range events {
		e := &events[i]
		if e.Success {
			successful++
		}

		day := e.Timestamp.UTC().Format("2006-01-02")
		ds := days[day]
		if ds == nil {
			ds = &DailyStat{Date: day}
			days[day] = ds
		}

		switch {
		case e.Event == dbpkg.EventLogin && e.Success:
			a.TotalLogins++
			ds.Logins++
			prov := e.Provider
			if prov == "" {
				prov = unknownLabel
			}
			if _, seen := provCounts[prov]; !seen {
				provOrder = append(provOrder, prov)
			}
			provCounts[prov]++
		case e.Event == dbpkg.EventSignup && e.Success:
			a.TotalSignups++
			ds.Signups++
		}

		if !e.Success {
			a.TotalErrors++
			ds.Errors++
			typ := e.ErrorType
			if typ == "" {
				typ = unknownLabel
			}
			if _, seen := errCounts[typ]; !seen {
				errOrder = append(errOrder, typ)
			}
			errCounts[typ]++
		}

		if e.Event == dbpkg.EventLogin && e.DurationMs != nil {
			loginDurSum += *e.DurationMs
			loginDurN++
		}
	}

	if loginDurN > 0 {
		a.AverageLoginDuration = float64(loginDurSum) / float64(loginDurN)
	}
	a.SuccessRate = 100 * float64(successful) / float64(len(events))

	// Descending by count; ties keep first-seen order.
	for _, typ := range errOrder {
		a.TopErrorTypes = append(a.TopErrorTypes, ErrorTypeCount{Type: typ, Count: errCounts[typ]})
	}
	sort.SliceStable(a.TopErrorTypes, func(i, j int) bool {
		return a.TopErrorTypes[i].Count > a.TopErrorTypes[j].Count
	})
	if len(a.TopErrorTypes) > 10 {
		a.TopErrorTypes = a.TopErrorTypes[:10]
	}

	for _, prov := range provOrder {
		a.LoginsByProvider = append(a.LoginsByProvider, ProviderCount{Provider: prov, Count: provCounts[prov]})
	}
	sort.SliceStable(a.LoginsByProvider, func(i, j int) bool {
		return a.LoginsByProvider[i].Count > a.LoginsByProvider[j].Count
	})

	dayKeys := make([]string, 0, len(days))
	for day := range days {
		dayKeys = append(dayKeys, day)
	}
	sort.Strings(dayKeys)
	for _, day := range dayKeys {
		a.DailyStats = append(a.DailyStats, *days[day])
	}

	return a
}
