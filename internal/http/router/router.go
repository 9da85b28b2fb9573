// Package router assembles the chi route tree for the booking API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/http/handlers"
	httpmiddleware "github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/http/middleware"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// Config holds router dependencies.
type Config struct {
	Logger            *logging.Logger
	Webhook           *handlers.WebhookHandler
	AdminAppointments *handlers.AdminAppointmentsHandler
	AdminAuthSecret   string
	MetricsHandler    http.Handler
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Webhook != nil {
		r.Post("/webhook/message", cfg.Webhook.HandleMessage)
	}

	if cfg.AdminAppointments != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/appointments", cfg.AdminAppointments.List)
		})
	}

	return r
}
