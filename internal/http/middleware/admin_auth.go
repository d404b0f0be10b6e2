package middleware

import (
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"authpulse/internal/config"
	dbpkg "authpulse/internal/db"
	httpctx "authpulse/internal/http/ctx"
)

// AdminAuth returns middleware that loads the signed-in operator from
// the session cookie and sets it on the context. The analytics and
// dashboard surfaces sit behind this.
func AdminAuth(db *gorm.DB, cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			cookie := ctx.Request.Header.Cookie("session_user")
			if len(cookie) == 0 {
				ctx.Redirect("/login", fasthttp.StatusSeeOther)
				return
			}
			username := string(cookie)

			var user dbpkg.User
			if err := db.Where("username = ?", username).First(&user).Error; err != nil {
				ctx.Redirect("/login", fasthttp.StatusSeeOther)
				return
			}

			if user.Username == cfg.AdminUser {
				user.IsAdmin = true
			}

			httpctx.SetUser(ctx, &user)
			next(ctx)
		}
	}
}
