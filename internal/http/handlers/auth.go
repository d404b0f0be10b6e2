package handlers

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	dbpkg "authpulse/internal/db"
	"authpulse/internal/monitor"
	ui "authpulse/web"
)

func LoginForm() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		t := ui.Templates().Lookup("login.html")
		if t == nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("login template not found")
			return
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, nil); err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("render error")
			return
		}
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBody(buf.Bytes())
	}
}

// LoginSubmit authenticates a dashboard operator. The credential check
// runs under the monitor's instrumentation wrapper, so the service's
// own sign-in shows up in its analytics like any other auth operation.
func LoginSubmit(db *gorm.DB, mon *monitor.Monitor) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		username := string(ctx.PostArgs().Peek("username"))
		password := string(ctx.PostArgs().Peek("password"))

		var user dbpkg.User
		err := mon.Instrument(ctx, "login", func(c context.Context) error {
			if err := db.WithContext(c).Where("username = ?", username).First(&user).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return monitor.NewFailure(monitor.KindInvalidCredentials, "login", errors.New("unknown username"))
				}
				return monitor.NewFailure(monitor.KindProviderError, "login", err)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
				return monitor.NewFailure(monitor.KindInvalidCredentials, "login", errors.New("password mismatch"))
			}
			return nil
		})
		if err != nil {
			if monitor.KindOf(err) == monitor.KindInvalidCredentials {
				renderLoginError(ctx, "Invalid username or password.")
				return
			}
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("database error")
			return
		}

		mon.RecordSessionEvent(ctx, username, strconv.Itoa(int(user.ID)), dbpkg.SessionCreated, map[string]any{
			"user_agent": string(ctx.Request.Header.Peek("User-Agent")),
			"ip_address": requestIP(ctx),
		})

		var c fasthttp.Cookie
		c.SetKey("session_user")
		c.SetValue(username)
		c.SetPath("/")
		c.SetHTTPOnly(true)
		ctx.Response.Header.SetCookie(&c)

		ctx.Redirect("/", fasthttp.StatusSeeOther)
	}
}

func renderLoginError(ctx *fasthttp.RequestCtx, errMsg string) {
	t := ui.Templates().Lookup("login.html")
	if t != nil {
		var buf bytes.Buffer
		_ = t.Execute(&buf, map[string]any{"Error": errMsg})
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBody(buf.Bytes())
	} else {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString(errMsg)
	}
}

// Logout clears the session cookie and records the logout metric plus a
// revoked session transition, so the session chain ends the way it does
// for the product's own users.
func Logout(db *gorm.DB, mon *monitor.Monitor) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		username := string(ctx.Request.Header.Cookie("session_user"))
		if username != "" {
			var user dbpkg.User
			if err := db.Where("username = ?", username).First(&user).Error; err == nil {
				userID := strconv.Itoa(int(user.ID))
				mon.RecordMetric(ctx, monitor.Metric{
					Event:     dbpkg.EventLogout,
					UserID:    userID,
					Success:   true,
					UserAgent: string(ctx.Request.Header.Peek("User-Agent")),
					IPAddress: requestIP(ctx),
				})
				mon.RecordSessionEvent(ctx, username, userID, dbpkg.SessionRevoked, map[string]any{
					"reason": "user_logout",
				})
			}
		}

		var c fasthttp.Cookie
		c.SetKey("session_user")
		c.SetValue("")
		c.SetPath("/")
		c.SetMaxAge(-1)
		ctx.Response.Header.SetCookie(&c)
		ctx.Redirect("/login", fasthttp.StatusSeeOther)
	}
}

// ChangePasswordSelf lets a non-bootstrap operator rotate their own password.
func ChangePasswordSelf(db *gorm.DB, adminUser string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}
		if user.Username == adminUser {
			ctx.SetStatusCode(fasthttp.StatusForbidden)
			ctx.SetBodyString("cannot change password for bootstrap admin user")
			return
		}

		current := string(ctx.PostArgs().Peek("current_password"))
		newPassword := string(ctx.PostArgs().Peek("new_password"))
		confirm := string(ctx.PostArgs().Peek("confirm_password"))

		if current == "" || newPassword == "" || confirm == "" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			ctx.SetBodyString("all password fields are required")
			return
		}
		if newPassword != confirm {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			ctx.SetBodyString("new passwords do not match")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			ctx.SetBodyString("current password is incorrect")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to hash password")
			return
		}

		if err := db.Model(&dbpkg.User{}).Where("id = ?", user.ID).Update("password_hash", string(hash)).Error; err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to update password")
			return
		}

		ctx.Redirect("/settings", fasthttp.StatusSeeOther)
	}
}
