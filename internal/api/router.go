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
	r.Use(s.bodySizeLimitMiddleware)

	// Health check (no auth required)
	r.Get("/health", s.handleHealth)

	// OAuth endpoints for the voice platform link (no shared-secret token;
	// the platform authenticates via client credentials)
	r.Get("/auth/auth", s.handleAuthorize)
	r.Post("/auth/token", s.handleToken)

	// Intent fulfillment (bearer token from /auth/token, checked permissively)
	r.Post("/fulfill", s.handleFulfill)

	// Shared-secret REST surface
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.tokenMiddleware)

		r.Route("/lights", func(r chi.Router) {
			r.Get("/", s.handleListLights)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetLight)
				r.Put("/power", s.handleSetPower)
				r.Put("/brightness", s.handleSetBrightness)
				r.Put("/color", s.handleSetColor)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.handleListGroups)
			r.Post("/", s.handleCreateGroup)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGroup)
				r.Post("/members", s.handleAddGroupMember)
				r.Delete("/members/{memberID}", s.handleRemoveGroupMember)
			})
		})

		// WebSocket state feed (token accepted via ?token= for browsers)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"lights":  s.lights.Count(),
	})
}
