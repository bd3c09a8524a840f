package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Get("/api/version", h.version)
	})

	// identity-scoped document-store routes
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/user/batch", h.batch)
		r.Get("/api/user/snapshot", h.snapshot)
		r.Get("/api/user/collections/{collection}/ids", h.listIDs)
		r.Get("/api/user/collections/{collection}/count", h.count)
		r.Get("/api/user/profile", h.profile)
		r.Put("/api/user/profile/sync-stamp", h.stampSync)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
