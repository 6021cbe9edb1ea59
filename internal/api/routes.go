package api

import "github.com/go-chi/chi/v5"

func RegisterRoutes(mux *chi.Mux, h *Handlers) {
	mux.Get("/healthz", h.Health)
	mux.Get("/version", h.Version)

	mux.Post("/api/ai/chat", h.relay.Chat)
	mux.Get("/api/ai/templates", h.Templates)

	if h.Admin != nil {
		mux.Post("/admin/api/conversations/clear", h.Admin.ClearConversations)
	}
}
