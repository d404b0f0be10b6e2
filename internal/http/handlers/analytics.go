package handlers

import (
	"time"

	"github.com/valyala/fasthttp"

	"authpulse/internal/monitor"
)

// defaultAnalyticsWindow is the trailing range used when the caller
// omits dates.
const defaultAnalyticsWindow = 30 * 24 * time.Hour

// parseDate accepts either a calendar date or an RFC 3339 instant.
// Calendar dates are anchored at midnight UTC.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// analyticsRange resolves the [start, end] interval from query args,
// defaulting to the trailing 30 days. An unparseable date is reported
// rather than silently replaced.
func analyticsRange(ctx *fasthttp.RequestCtx, now time.Time) (start, end time.Time, ok bool) {
	end = now
	start = now.Add(-defaultAnalyticsWindow)

	if s := string(ctx.QueryArgs().Peek("start_date")); s != "" {
		t, valid := parseDate(s)
		if !valid {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid start_date")
			return start, end, false
		}
		start = t
	}
	if s := string(ctx.QueryArgs().Peek("end_date")); s != "" {
		t, valid := parseDate(s)
		if !valid {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid end_date")
			return start, end, false
		}
		end = t
	}
	return start, end, true
}

// AuthAnalytics serves the range report for the dashboard. Unlike the
// recorder, a failed read here is a real failure and surfaces as 500;
// an analytics page with no data is worth reporting.
func AuthAnalytics(mon *monitor.Monitor) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		start, end, ok := analyticsRange(ctx, time.Now().UTC())
		if !ok {
			return
		}

		report, err := mon.GetAnalytics(ctx, start, end)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to compute analytics")
			return
		}
		jsonResponse(ctx, report)
	}
}

// RealTimeMetrics serves the trailing-window snapshot the dashboard
// polls every 30 seconds.
func RealTimeMetrics(mon *monitor.Monitor) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		snap, err := mon.GetRealTimeMetrics(ctx)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to compute real-time metrics")
			return
		}
		jsonResponse(ctx, snap)
	}
}
