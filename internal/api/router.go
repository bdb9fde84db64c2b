package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ticketwatch/transcripts/internal/web"
)

func NewRouter(apiHandler *APIHandler, pages *web.PageHandler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeSuccess(w, http.StatusOK, envelope{"status": "ok"})
		})

		// Bot ingestion is API-key protected, not session protected.
		r.With(apiHandler.RequireAPIKey).Post("/transcripts", apiHandler.UploadTranscriptHandler)

		r.Group(func(r chi.Router) {
			r.Use(apiHandler.RequireSession)

			r.Get("/transcripts", apiHandler.ListTranscriptsHandler)
			r.Get("/transcripts/{ticketID}", apiHandler.GetTranscriptHandler)
			r.Get("/check-role", apiHandler.CheckRoleHandler)
		})
	})

	// OAuth flow
	r.Get("/auth/login", apiHandler.LoginHandler)
	r.Get("/auth/callback", apiHandler.CallbackHandler)
	r.Get("/auth/logout", apiHandler.LogoutHandler)

	// Pages
	r.Get("/login", pages.LoginPage)
	r.Group(func(r chi.Router) {
		r.Use(apiHandler.RequirePageSession)

		r.Get("/", pages.ListPage)
		r.Get("/transcript/{ticketID}", pages.DetailPage)
	})

	return r
}
