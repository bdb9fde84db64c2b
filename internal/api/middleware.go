package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ticketwatch/transcripts/internal/auth"
)

// SessionCookieName holds the signed session token in the browser.
const SessionCookieName = "transcript_session"

func (h *APIHandler) sessionFromRequest(r *http.Request) (*auth.Session, error) {
	token := ""
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		token = cookie.Value
	} else if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		return nil, http.ErrNoCookie
	}
	return h.sessions.Validate(token)
}

// RequireSession rejects API requests without a valid session token.
func (h *APIHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessionFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated. Login required.")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithSession(r.Context(), sess)))
	})
}

// RequirePageSession redirects browsers without a valid session to /login.
func (h *APIHandler) RequirePageSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessionFromRequest(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithSession(r.Context(), sess)))
	})
}

// RequireAPIKey protects the service-to-service ingestion endpoint. When
// no key is configured uploads are refused outright.
func (h *APIHandler) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.apiKey == "" {
			h.log.Warn().Msg("upload rejected: TRANSCRIPT_API_KEY is not configured")
			writeError(w, http.StatusUnauthorized, "Transcript ingestion is not configured")
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != h.apiKey {
			writeError(w, http.StatusUnauthorized, "Missing or invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with status and duration.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
