package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Post("/logout", apiHandler.LogoutHandler)
			r.Get("/me", apiHandler.MeHandler)
			r.Patch("/me", apiHandler.UpdateProfileHandler)

			// Report routes
			r.Put("/reports", apiHandler.SubmitReportHandler)
			r.Get("/reports", apiHandler.ListReportsHandler)

			// Team routes
			r.Get("/users", apiHandler.ListUsersHandler)
			r.Get("/users/{userID}/stats", apiHandler.UserStatsHandler)

			// AI summary routes
			r.Post("/summaries/{date}", apiHandler.GenerateSummaryHandler)
			r.Get("/summaries/{date}", apiHandler.GetSummaryHandler)

			// Backup/restore routes
			r.Get("/export", apiHandler.ExportHandler)
			r.Post("/import", apiHandler.ImportHandler)
		})
	})

	return r
}
