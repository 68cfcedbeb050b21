package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/outreach/internal/caseservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *caseservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Roster.
	r.Get("/clients", h.ListClients)
	r.Post("/clients", h.Intake)
	r.Get("/clients/export.xlsx", h.ExportRoster)
	r.Get("/clients/{id}", h.GetClient)
	r.Get("/clients/{id}/export", h.ExportClient)
	r.Post("/clients/{id}/recount", h.RecountClient)

	// Interaction log.
	r.Get("/clients/{id}/interactions", h.ListInteractions)
	r.Post("/clients/{id}/interactions", h.LogInteraction)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
