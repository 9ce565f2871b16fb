package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/Fantasim/rainmaker/internal/api/handlers"
	"github.com/Fantasim/rainmaker/internal/api/middleware"
	"github.com/Fantasim/rainmaker/internal/config"
	"github.com/Fantasim/rainmaker/internal/db"
	"github.com/Fantasim/rainmaker/internal/disperse"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(database *db.DB, dispatcher *disperse.Dispatcher, hub *disperse.Hub, cfg *config.Config) chi.Router {
	r := chi.NewRouter()

	// Middleware stack (order matters)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.HostCheck)
	r.Use(middleware.CORS)
	r.Use(middleware.CSRF)

	slog.Info("router initialized",
		"middleware", []string{"requestLogging", "hostCheck", "cors", "csrf"},
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthHandler(cfg, Version))
		r.Get("/networks", handlers.ListNetworks())

		r.Post("/disperse", handlers.SubmitDisperse(dispatcher, database))
		r.Get("/disperse/state", handlers.DisperseState(dispatcher))
		r.Post("/disperse/cancel", handlers.CancelDisperse(dispatcher))

		r.Get("/events", handlers.Events(hub, dispatcher))

		r.Get("/draft", handlers.GetDraft(database))
		r.Put("/draft", handlers.SaveDraft(database))
		r.Delete("/draft", handlers.DeleteDraft(database))

		r.Post("/import", handlers.ImportCSV())

		r.Get("/submissions", handlers.ListSubmissions(database))
	})

	return r
}
