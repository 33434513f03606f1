// Package fakeapi is an in-memory implementation of the CodeVF HTTP API.
//
// It serves the same endpoints, wire fields and error envelope as the real
// service and is used by the SDK and CLI tests and by the codevf-fakeapi
// binary for local development.
package fakeapi

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// BasePath is the prefix every endpoint is mounted under.
const BasePath = "/api/v1"

// NewRouter creates and configures the HTTP router. Requests must carry
// apiKey as a bearer token. A nil logger discards request logs.
func NewRouter(store *Store, apiKey string, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()

	// Global middleware chain
	r.Use(Recovery(logger))
	r.Use(chimiddleware.RealIP)
	r.Use(Logging(logger))

	h := NewHandler(store)

	r.Route(BasePath, func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Post("/projects/create", h.CreateProject)

		r.Post("/tasks/create", h.CreateTask)
		r.Get("/tasks/{id}", h.GetTask)
		r.Post("/tasks/{id}/cancel", h.CancelTask)

		r.Get("/credits/balance", h.CreditBalance)
		r.Get("/tags", h.ListTags)
	})

	return r
}
