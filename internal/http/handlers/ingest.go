package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/valyala/fasthttp"

	dbpkg "authpulse/internal/db"
	httpctx "authpulse/internal/http/ctx"
	"authpulse/internal/monitor"
)

// reportSource returns the source label of the API key that authorized
// this request, so recorded events can be traced back to the reporter.
func reportSource(ctx *fasthttp.RequestCtx) string {
	if key, ok := httpctx.APIKeyFromCtx(ctx); ok {
		return key.Source
	}
	return ""
}

func withSource(meta map[string]any, source string) map[string]any {
	if source == "" {
		return meta
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if _, exists := meta["source"]; !exists {
		meta["source"] = source
	}
	return meta
}

var validEvents = map[string]bool{
	dbpkg.EventLogin:          true,
	dbpkg.EventLogout:         true,
	dbpkg.EventSignup:         true,
	dbpkg.EventError:          true,
	dbpkg.EventSessionRefresh: true,
}

var validActions = map[string]bool{
	dbpkg.SessionCreated:   true,
	dbpkg.SessionRefreshed: true,
	dbpkg.SessionExpired:   true,
	dbpkg.SessionRevoked:   true,
}

// MetricEventPayload is one auth occurrence reported by an external
// auth callback. Timestamps are assigned server-side at record time;
// the payload carries none.
type MetricEventPayload struct {
	Event        string         `json:"event"`
	UserID       string         `json:"user_id,omitempty"`
	Email        string         `json:"email,omitempty"`
	Provider     string         `json:"provider,omitempty"`
	DurationMs   *int64         `json:"duration_ms,omitempty"`
	Success      bool           `json:"success"`
	ErrorType    string         `json:"error_type,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type metricIngestRequest struct {
	Events []MetricEventPayload `json:"events"`
}

// SessionEventPayload is one session lifecycle transition reported by
// the session middleware of an external app.
type SessionEventPayload struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type sessionIngestRequest struct {
	Events []SessionEventPayload `json:"events"`
}

// IngestMetrics accepts a batch of metric events from an authorized
// reporter. Recording is fail-open, so a well-formed batch is always
// accepted with 202; only malformed payloads are rejected.
func IngestMetrics(mon *monitor.Monitor) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload metricIngestRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(payload.Events) == 0 {
			errResponse(ctx, fasthttp.StatusBadRequest, "no events provided")
			return
		}

		userAgent := string(ctx.Request.Header.Peek("User-Agent"))
		remoteIP := requestIP(ctx)
		source := reportSource(ctx)

		accepted := 0
		for _, ev := range payload.Events {
			if !validEvents[ev.Event] {
				continue
			}
			if ev.UserAgent == "" {
				ev.UserAgent = userAgent
			}
			if ev.IPAddress == "" {
				ev.IPAddress = remoteIP
			}

			mon.RecordMetric(ctx, monitor.Metric{
				Event:        ev.Event,
				UserID:       ev.UserID,
				Email:        ev.Email,
				Provider:     ev.Provider,
				DurationMs:   ev.DurationMs,
				Success:      ev.Success,
				ErrorType:    ev.ErrorType,
				ErrorMessage: ev.ErrorMessage,
				UserAgent:    ev.UserAgent,
				IPAddress:    ev.IPAddress,
				Metadata:     withSource(ev.Metadata, source),
			})
			accepted++
		}

		if accepted == 0 {
			errResponse(ctx, fasthttp.StatusBadRequest, "no valid events after validation")
			return
		}

		ctx.SetStatusCode(fasthttp.StatusAccepted)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"accepted","count":` + strconv.Itoa(accepted) + `}`)
	}
}

// IngestSessions accepts a batch of session lifecycle events.
func IngestSessions(mon *monitor.Monitor) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload sessionIngestRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(payload.Events) == 0 {
			errResponse(ctx, fasthttp.StatusBadRequest, "no events provided")
			return
		}

		source := reportSource(ctx)

		accepted := 0
		for _, ev := range payload.Events {
			if ev.SessionID == "" || ev.UserID == "" || !validActions[ev.Action] {
				continue
			}
			mon.RecordSessionEvent(ctx, ev.SessionID, ev.UserID, ev.Action, withSource(ev.Metadata, source))
			accepted++
		}

		if accepted == 0 {
			errResponse(ctx, fasthttp.StatusBadRequest, "no valid events after validation")
			return
		}

		ctx.SetStatusCode(fasthttp.StatusAccepted)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"accepted","count":` + strconv.Itoa(accepted) + `}`)
	}
}

// IngestError accepts one error report with full context. The recorder
// dual-writes the error row and the derived failed metric.
func IngestError(mon *monitor.Monitor) fasthttp.RequestHandler {
	type errorIngestRequest struct {
		ErrorType    string         `json:"error_type"`
		ErrorMessage string         `json:"error_message"`
		UserID       string         `json:"user_id,omitempty"`
		Email        string         `json:"email,omitempty"`
		Operation    string         `json:"operation,omitempty"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}

	return func(ctx *fasthttp.RequestCtx) {
		var payload errorIngestRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.ErrorMessage == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "error_message required")
			return
		}

		kind := monitor.Kind(payload.ErrorType)
		switch kind {
		case monitor.KindInvalidCredentials, monitor.KindProviderError,
			monitor.KindSessionExpired, monitor.KindCallbackError,
			monitor.KindStateMismatch:
		default:
			kind = monitor.KindUnknown
		}

		failure := monitor.NewFailure(kind, payload.Operation, errors.New(payload.ErrorMessage))
		mon.RecordError(ctx, failure, monitor.ErrorContext{
			UserID:    payload.UserID,
			Email:     payload.Email,
			Operation: payload.Operation,
			UserAgent: string(ctx.Request.Header.Peek("User-Agent")),
			IPAddress: requestIP(ctx),
			Metadata:  withSource(payload.Metadata, reportSource(ctx)),
		})

		ctx.SetStatusCode(fasthttp.StatusAccepted)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"accepted"}`)
	}
}
