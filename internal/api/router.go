package api

import (
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
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/resources", func(r chi.Router) {
				r.Get("/", s.handleListResources)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetResource)
					r.Post("/commands", s.handleIssueCommand)
					r.Get("/history", s.handleGetHistory)
				})
			})

			r.Get("/kinds", s.handleListKinds)
			r.Get("/colors", s.handleListColors)

			// WebSocket (token via query parameter for browser clients)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status and the mirror's
// bootstrap state. This is the only health signal beyond the one-shot
// ready callback; connectivity loss otherwise shows up only in logs.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resources := 0
	if reg := s.engine.Registry(); reg != nil {
		resources = reg.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"state":     s.engine.CurrentState(),
		"resources": resources,
		"version":   s.version,
	})
}
