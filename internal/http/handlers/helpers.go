package handlers

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	dbpkg "authpulse/internal/db"
	httpctx "authpulse/internal/http/ctx"
)

// MustUser returns the current operator from context, or sends 401 and
// returns (nil, false).
func MustUser(ctx *fasthttp.RequestCtx) (*dbpkg.User, bool) {
	user, ok := httpctx.UserFromCtx(ctx)
	if !ok {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString("unauthorized")
		return nil, false
	}
	return user, true
}

// RequestLogger returns fasthttp middleware that logs method, path,
// status and duration through the service logger.
func RequestLogger(log logrus.FieldLogger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			log.WithFields(logrus.Fields{
				"method":   string(ctx.Method()),
				"path":     string(ctx.Path()),
				"status":   ctx.Response.StatusCode(),
				"duration": time.Since(start).String(),
				"ip":       ctx.RemoteAddr().String(),
			}).Info("request")
		}
	}
}

func jsonResponse(ctx *fasthttp.RequestCtx, data any) {
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

func errResponse(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetBodyString(msg)
}

// requestIP extracts the reporting client's address, preferring the
// proxy-forwarded headers the auth callbacks send along.
func requestIP(ctx *fasthttp.RequestCtx) string {
	if v := ctx.Request.Header.Peek("X-Forwarded-For"); len(v) > 0 {
		return string(v)
	}
	if v := ctx.Request.Header.Peek("X-Real-IP"); len(v) > 0 {
		return string(v)
	}
	return ctx.RemoteAddr().String()
}
