/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP ingestion listener (chi): middleware stack and route
  definitions. HTTP is just another producer: everything submitted here goes
  through the same ordering channel as file and Kafka input, so the engine's
  guarantees are identical across transports.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for dashboards

ROUTES:
  POST /api/transactions   Submit one transaction record
  GET  /api/report         Final snapshot (409 while the stream is open)
  GET  /api/health         Liveness probe

SECURITY NOTE:
  Producer authentication is intentionally absent.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", h.SubmitTransaction)
		r.Get("/report", h.GetReport)
		r.Get("/health", h.Health)
	})

	return r
}
