package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig wires the handlers and middleware into the API surface.
type RouterConfig struct {
	Slots       *SlotHandler
	Maintenance *MaintenanceHandler
	Summaries   *SummaryHandler
	// AdminMiddleware guards mutating routes; read routes stay open.
	AdminMiddleware func(http.Handler) http.Handler
	Middleware      []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP API:
//
//	GET  /health
//	GET  /tenants/{tenantID}/slots
//	GET  /tenants/{tenantID}/summary
//	POST /tenants/{tenantID}/slots/fill        (admin)
//	POST /tenants/{tenantID}/maintenance/run   (admin)
func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()

	for _, middleware := range cfg.Middleware {
		router.Use(middleware)
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/tenants/{tenantID}", func(r chi.Router) {
		if cfg.Slots != nil {
			r.Get("/slots", cfg.Slots.List)
		}
		if cfg.Summaries != nil {
			r.Get("/summary", cfg.Summaries.Get)
		}

		r.Group(func(r chi.Router) {
			if cfg.AdminMiddleware != nil {
				r.Use(cfg.AdminMiddleware)
			}
			if cfg.Slots != nil {
				r.Post("/slots/fill", cfg.Slots.Fill)
			}
			if cfg.Maintenance != nil {
				r.Post("/maintenance/run", cfg.Maintenance.Run)
			}
		})
	})

	return router
}
