package handlers

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "authpulse/internal/db"
)

type recentError struct {
	ID           string `json:"id"`
	Timestamp    string `json:"timestamp"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	Operation    string `json:"operation"`
	UserID       string `json:"user_id,omitempty"`
	Email        string `json:"email,omitempty"`
}

// RecentErrors serves the dashboard's error drill-down list, newest first.
func RecentErrors(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		limit := 20
		if s := string(ctx.QueryArgs().Peek("limit")); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				if n > 200 {
					n = 200
				}
				limit = n
			}
		}
		offset := 0
		if s := string(ctx.QueryArgs().Peek("offset")); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n >= 0 {
				offset = n
			}
		}

		q := db.Model(&dbpkg.AuthError{})
		if op := string(ctx.QueryArgs().Peek("operation")); op != "" {
			q = q.Where("operation = ?", op)
		}
		if typ := string(ctx.QueryArgs().Peek("error_type")); typ != "" {
			q = q.Where("error_type = ?", typ)
		}

		var totalCount int64
		if err := q.Count(&totalCount).Error; err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to count errors")
			return
		}

		var errs []dbpkg.AuthError
		if err := q.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&errs).Error; err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query recent errors")
			return
		}

		rows := make([]recentError, 0, len(errs))
		for _, e := range errs {
			rows = append(rows, recentError{
				ID:           e.ID.String(),
				Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
				ErrorType:    e.ErrorType,
				ErrorMessage: e.ErrorMessage,
				Operation:    e.Operation,
				UserID:       e.UserID,
				Email:        e.Email,
			})
		}

		hasMore := offset+limit < int(totalCount)
		jsonResponse(ctx, map[string]any{"errors": rows, "total": totalCount, "has_more": hasMore})
	}
}

// ErrorDetail serves one error row with its stack trace and metadata.
func ErrorDetail(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}
		idVal := ctx.UserValue("id")
		idStr, ok := idVal.(string)
		if !ok || idStr == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "id required")
			return
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid id")
			return
		}

		var e dbpkg.AuthError
		if err := db.Where("id = ?", id).First(&e).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				errResponse(ctx, fasthttp.StatusNotFound, "error not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to load error")
			return
		}

		jsonResponse(ctx, map[string]any{
			"id":            e.ID.String(),
			"timestamp":     e.Timestamp.UTC().Format(time.RFC3339Nano),
			"error_type":    e.ErrorType,
			"error_message": e.ErrorMessage,
			"stack_trace":   e.StackTrace,
			"operation":     e.Operation,
			"user_id":       e.UserID,
			"email":         e.Email,
			"user_agent":    e.UserAgent,
			"ip_address":    e.IPAddress,
			"metadata":      e.Metadata,
		})
	}
}
