package handlers

import (
	"bytes"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"authpulse/internal/config"
	dbpkg "authpulse/internal/db"
	httpctx "authpulse/internal/http/ctx"
	ui "authpulse/web"
)

type LayoutData struct {
	Title        string
	Breadcrumb   string
	ActivePage   string
	PageTemplate string
	IsAdmin      bool
	Username     string
	AdminUser    string
	APIKeys      []dbpkg.APIKey
	IngestAPIKey string
}

func getLayoutData(ctx *fasthttp.RequestCtx, cfg *config.Config, activePage, breadcrumb, pageTemplate string) LayoutData {
	isAdmin := false
	username := ""
	if user, ok := httpctx.UserFromCtx(ctx); ok {
		username = user.Username
		isAdmin = user.IsAdmin || username == cfg.AdminUser
	}

	return LayoutData{
		Title:        breadcrumb,
		Breadcrumb:   breadcrumb,
		ActivePage:   activePage,
		PageTemplate: pageTemplate,
		IsAdmin:      isAdmin,
		Username:     username,
		AdminUser:    cfg.AdminUser,
	}
}

func renderLayout(ctx *fasthttp.RequestCtx, data LayoutData) {
	var buf bytes.Buffer
	if err := ui.Templates().ExecuteTemplate(&buf, "layout", data); err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("render error")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}

// DashboardPage renders the auth analytics dashboard shell. The charts
// and pulse tiles fetch /v1/auth/analytics and /v1/auth/realtime from
// the browser; the realtime tiles repoll every 30 seconds.
func DashboardPage(cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		data := getLayoutData(ctx, cfg, "dashboard", "Auth Analytics", "dashboard")
		renderLayout(ctx, data)
	}
}

// SettingsPage lists the operator's reporter API keys.
func SettingsPage(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		var apiKeys []dbpkg.APIKey
		if err := db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&apiKeys).Error; err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to load API keys")
			return
		}

		data := getLayoutData(ctx, cfg, "settings", "Settings", "settings")
		data.APIKeys = apiKeys
		data.IngestAPIKey = cfg.IngestAPIKey
		renderLayout(ctx, data)
	}
}

// Home redirects to the dashboard.
func Home() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Redirect("/dashboard", fasthttp.StatusSeeOther)
	}
}
