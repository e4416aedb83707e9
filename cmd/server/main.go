package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"event-admin-portal/internal/api"
	"event-admin-portal/internal/config"
	"event-admin-portal/internal/handlers"
	"event-admin-portal/internal/middleware"
	"event-admin-portal/internal/services"
	"event-admin-portal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("failed to load config", "error", err)
	}

	logger := newLogger(cfg.Server.Env)
	defer logger.Sync()

	renderer, err := templates.New()
	if err != nil {
		logger.Fatalw("failed to parse templates", "error", err)
	}

	client := api.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	sessions := middleware.NewSessionManager(cfg.Session.Secret, cfg.Server.Env == "production", logger)

	dashboards := services.NewDashboardService(client, logger)
	offline := services.NewOfflineService(client, logger)
	composer := services.NewTicketComposer(cfg.WhatsApp, cfg.QR)

	auth := handlers.NewAuthHandler(sessions, renderer, logger)
	dashboard := handlers.NewDashboardHandler(dashboards, sessions, renderer, logger)
	bookings := handlers.NewOfflineHandler(offline, composer, sessions, renderer, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Recover(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
	})
	router.Get("/login", auth.LoginPage)
	router.Post("/login", auth.Login)
	router.Post("/logout", auth.Logout)

	router.Route("/admin", func(r chi.Router) {
		r.Use(sessions.RequireToken)

		r.Get("/dashboard", dashboard.DashboardPage)
		r.Get("/dashboard/revenue-chart", dashboard.RevenueChart)
		r.Get("/dashboard/pending-scans", dashboard.PendingScansPage)
		r.Get("/dashboard/pending-scans/export", dashboard.ExportPendingScans)

		r.Get("/offline-bookings", bookings.ListPage)
		r.Get("/offline-bookings/export", bookings.Export)
		r.Get("/offline-bookings/{id}/ticket", bookings.TicketPage)
		r.Get("/offline-bookings/{id}/qr", bookings.DownloadQR)
		r.Get("/offline-bookings/{id}/whatsapp", bookings.WhatsApp)
		r.Post("/offline-bookings/{id}/delete", bookings.Delete)
	})

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Infow("starting server", "addr", addr, "env", cfg.Server.Env, "upstream", cfg.Upstream.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infow("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("forced shutdown", "error", err)
	}
	logger.Infow("server stopped")
}

func newLogger(env string) *zap.SugaredLogger {
	if env == "production" {
		return zap.Must(zap.NewProduction()).Sugar()
	}
	return zap.Must(zap.NewDevelopment()).Sugar()
}
