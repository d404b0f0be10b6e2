package main

import (
	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"authpulse/internal/config"
	"authpulse/internal/db"
	"authpulse/internal/http/handlers"
	appmw "authpulse/internal/http/middleware"
	"authpulse/internal/monitor"
	ui "authpulse/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	if err := db.EnsureBootstrapAdmin(sqlDB, cfg); err != nil {
		log.WithError(err).Fatal("failed to ensure bootstrap admin")
	}

	if cfg.IngestAPIKey != "" {
		if err := db.EnsureBootstrapAPIKey(sqlDB, cfg); err != nil {
			log.WithError(err).Warn("failed to ensure bootstrap ingest key (will be created on first settings page load)")
		} else {
			log.Info("bootstrap ingest key configured and associated with admin user")
		}
	}

	db.StartRetentionWorker(sqlDB, cfg.RetentionDays, log)

	monitor.InitPrometheusMetrics()
	mon := monitor.New(sqlDB, log)

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.ServeFS("/static/{filepath:*}", ui.StaticFS())

	r.GET("/login", handlers.LoginForm())
	r.POST("/login", handlers.LoginSubmit(sqlDB, mon))
	r.POST("/logout", handlers.Logout(sqlDB, mon))

	admin := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return appmw.SessionActivity(mon)(appmw.AdminAuth(sqlDB, cfg)(h))
	}

	r.GET("/", admin(handlers.Home()))
	r.GET("/dashboard", admin(handlers.DashboardPage(cfg)))
	r.GET("/settings", admin(handlers.SettingsPage(sqlDB, cfg)))

	r.POST("/settings/password", admin(handlers.ChangePasswordSelf(sqlDB, cfg.AdminUser)))

	r.POST("/admin/apikeys/create", admin(handlers.CreateAPIKey(sqlDB)))
	r.POST("/admin/apikeys/delete", admin(handlers.DeleteAPIKey(sqlDB, cfg)))
	r.POST("/admin/apikeys/set-active", admin(handlers.SetActiveAPIKey(sqlDB)))

	r.GET("/v1/auth/analytics", admin(handlers.AuthAnalytics(mon)))
	r.GET("/v1/auth/realtime", admin(handlers.RealTimeMetrics(mon)))
	r.GET("/v1/auth/errors/recent", admin(handlers.RecentErrors(sqlDB)))
	r.GET("/v1/auth/errors/{id}", admin(handlers.ErrorDetail(sqlDB)))

	r.POST("/v1/auth/events", appmw.BearerAuth(sqlDB)(handlers.IngestMetrics(mon)))
	r.POST("/v1/auth/sessions", appmw.BearerAuth(sqlDB)(handlers.IngestSessions(mon)))
	r.POST("/v1/auth/errors", appmw.BearerAuth(sqlDB)(handlers.IngestError(mon)))

	r.GET("/v1/metrics", handlers.ScrapeMetrics(sqlDB))

	handler := handlers.RequestLogger(log)(r.Handler)

	log.WithField("addr", cfg.ListenAddr).Info("authpulse listening")
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
