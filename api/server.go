/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer connecting URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a game client

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

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/players", func(r chi.Router) {
			r.Post("/", h.CreatePlayer)
			r.Get("/{id}", h.GetPlayer)
			r.Get("/{id}/journal", h.GetJournal)

			r.Route("/{id}/lab", func(r chi.Router) {
				r.Get("/", h.GetLab)
				r.Post("/upgrades", h.PurchaseUpgrade)
				r.Post("/recipe", h.SelectRecipe)
				r.Post("/collect", h.CollectBrews)
			})

			r.Post("/{id}/hatch", h.Hatch)
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/upgrades", h.ListUpgrades)
			r.Get("/recipes", h.ListRecipes)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/content/reload", h.ReloadContent)
		})
	})

	return r
}
