package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/video-stream/shelf/internal/api/handlers"
	"github.com/video-stream/shelf/internal/api/middleware"
	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/catalog"
	"github.com/video-stream/shelf/internal/config"
)

func NewRouter(svc *auth.Service, provider auth.IdentityProvider, database handlers.Pinger, embed *catalog.Embed, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.Server.CORSOrigins)))

	// Handlers
	authHandler := handlers.NewAuthHandler(svc, cfg.Server.CookieSecure)
	historyHandler := handlers.NewHistoryHandler(svc)
	streamHandler := handlers.NewStreamHandler(svc, embed)
	adminHandler := handlers.NewAdminHandler(svc)
	healthHandler := handlers.NewHealthHandler(database)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(middleware.DefaultMaxBody))
			r.Use(middleware.Identify(provider))

			// Auth
			if provider.AllowsLogin() {
				limit := cfg.Server.LoginRateLimit
				if limit <= 0 {
					limit = 10
				}
				r.With(httprate.LimitByIP(limit, time.Minute)).Post("/auth/login", authHandler.Login)
				r.Post("/auth/logout", authHandler.Logout)
			}
			r.Get("/auth/me", authHandler.Me)

			// Watch history; anonymous reads and writes are harmless no-ops
			r.Post("/progress", historyHandler.SaveProgress)
			r.Get("/history", historyHandler.List)
			r.With(middleware.RequireIdentity).Delete("/history/{id}", historyHandler.Remove)
			r.With(middleware.RequireIdentity).Delete("/history", historyHandler.Clear)

			// Streaming
			r.Get("/stream/movie/{id}", streamHandler.Movie)
			r.Get("/stream/tv/{id}", streamHandler.TV)

			// Accounts
			if provider.AllowsLogin() {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePrivileged)
					r.Get("/admin/accounts", adminHandler.ListAccounts)
					r.Post("/admin/accounts", adminHandler.CreateAccount)
				})
			}
		})
	})

	return r
}
