/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This is
  the wiring layer that connects URLs to handlers; all payroll computation
  lives behind the runner package.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the operator frontend

ROUTE GROUPS:
  /api/uploads/*   Stage the shift record and tracker workbooks
  /api/names       Employees available for an off-cycle run
  /api/runs/*      Trigger runs, list history, download artifacts
  /api/tracker/*   Adopt a run's refreshed tracker for the next cycle

SECURITY NOTE:
  No authentication middleware. The server is meant to run on the payroll
  operator's own machine or a private network.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/uploads", func(r chi.Router) {
			r.Post("/shift-record", h.UploadShiftRecord)
			r.Post("/tracker", h.UploadTracker)
		})

		r.Get("/names", h.ListNames)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.Post("/", h.ProcessFullCycle)
			r.Post("/off-cycle", h.ProcessOffCycle)
			r.Get("/{id}", h.GetRun)
			r.Get("/{id}/artifacts/{index}", h.DownloadArtifact)
		})

		r.Post("/tracker/refresh", h.RefreshTracker)
	})

	return r
}
