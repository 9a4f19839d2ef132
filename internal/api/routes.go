package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router and all endpoints.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/import", func(r chi.Router) {
			r.Post("/campaigns", h.HandleImportCampaigns)
			r.Post("/flows", h.HandleImportFlows)
			r.Post("/subscribers", h.HandleImportSubscribers)
		})
		r.Get("/imports", h.HandleListImports)

		r.Get("/dashboard", h.HandleDashboard)
		r.Get("/series", h.HandleSeries)
		r.Get("/compare", h.HandleCompare)

		r.Route("/breakdown", func(r chi.Router) {
			r.Get("/day-of-week", h.HandleDayOfWeek)
			r.Get("/hour-of-day", h.HandleHourOfDay)
		})

		r.Route("/audience", func(r chi.Router) {
			r.Get("/dead-weight", h.HandleDeadWeight)
			r.Get("/high-value", h.HandleHighValue)
		})

		r.Post("/significance", h.HandleSignificance)

		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/", h.HandleSaveSnapshot)
			r.Get("/", h.HandleListSnapshots)
			r.Get("/{id}", h.HandleGetSnapshot)
			r.Post("/{id}/restore", h.HandleRestoreSnapshot)
			r.Delete("/{id}", h.HandleDeleteSnapshot)
		})
	})

	return r
}
