package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	dbpkg "authpulse/internal/db"
	httpctx "authpulse/internal/http/ctx"
	"authpulse/internal/monitor"
)

// refreshThrottle is how often a "refreshed" transition is recorded per
// session. Firing on every request would flood the session table; this
// throttle is a middleware policy, not part of the recorder contract.
const refreshThrottle = 5 * time.Minute

// SessionActivity tracks dashboard session liveness: when a signed-in
// operator makes a request and the last recorded activity is older than
// the throttle, a "refreshed" session event is recorded and the
// client-visible last_activity cookie is bumped. Recording happens off
// the request path; a slow or failing store never delays the response.
func SessionActivity(mon *monitor.Monitor) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			next(ctx)

			user, ok := httpctx.UserFromCtx(ctx)
			if !ok {
				return
			}

			now := time.Now()
			if last := ctx.Request.Header.Cookie("last_activity"); len(last) > 0 {
				if ms, err := strconv.ParseInt(string(last), 10, 64); err == nil {
					if now.Sub(time.UnixMilli(ms)) < refreshThrottle {
						return
					}
				}
			}

			var c fasthttp.Cookie
			c.SetKey("last_activity")
			c.SetValue(strconv.FormatInt(now.UnixMilli(), 10))
			c.SetPath("/")
			c.SetHTTPOnly(true)
			c.SetMaxAge(int((30 * 24 * time.Hour).Seconds()))
			ctx.Response.Header.SetCookie(&c)

			sessionID := string(ctx.Request.Header.Cookie("session_user"))
			userID := strconv.Itoa(int(user.ID))
			path := string(ctx.Path())
			userAgent := string(ctx.Request.Header.Peek("User-Agent"))
			remoteIP := clientIP(ctx)

			go func() {
				mon.RecordSessionEvent(context.Background(), sessionID, userID, dbpkg.SessionRefreshed, map[string]any{
					"path":       path,
					"user_agent": userAgent,
					"ip_address": remoteIP,
				})
			}()
		}
	}
}

// clientIP prefers the proxy-forwarded address headers over the socket
// peer, matching how the auth callbacks capture request origin.
func clientIP(ctx *fasthttp.RequestCtx) string {
	if v := ctx.Request.Header.Peek("X-Forwarded-For"); len(v) > 0 {
		return string(v)
	}
	if v := ctx.Request.Header.Peek("X-Real-IP"); len(v) > 0 {
		return string(v)
	}
	return ctx.RemoteAddr().String()
}
