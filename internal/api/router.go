package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Put("/status", s.handleSetDeviceStatus)
			})
		})

		r.Route("/loans", func(r chi.Router) {
			r.Post("/", s.handleCreateLoan)
			r.Get("/active", s.handleListActiveLoans)
			r.Post("/{id}/return", s.handleReturnLoan)
		})
	})

	return r
}

// handleHealth reports the server and component health.
//
// A failing database makes the service unavailable (503); a failing
// optional component only degrades it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	components := map[string]string{"database": "ok"}

	if err := s.database.HealthCheck(ctx); err != nil {
		s.logger.Warn("database health check failed", "error", err)
		components["database"] = "unavailable"
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	for name, checker := range s.optional {
		if err := checker.HealthCheck(ctx); err != nil {
			components[name] = "unavailable"
			if code == http.StatusOK {
				status = "degraded"
			}
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}
