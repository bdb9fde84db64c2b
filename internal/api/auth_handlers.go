package api

import (
	"net/http"
	"time"

	"github.com/ticketwatch/transcripts/internal/auth"
)

const stateCookieName = "oauth_state"

// LoginHandler starts the Discord authorization-code flow.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state, err := auth.NewStateToken()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to generate oauth state")
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// CallbackHandler finishes the flow: verifies the state, exchanges the
// code, fetches the user's identity and resolves the admin role exactly
// once, then issues the session token.
func (h *APIHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Msg("oauth code exchange failed")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := h.discord.FetchIdentity(r.Context(), token.AccessToken)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch discord identity")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	// A failed role lookup degrades to a regular session, not an error.
	hasAdminRole := h.discord.ResolveAdminRole(r.Context(), token.AccessToken)

	sessionToken, err := h.sessions.Issue(auth.Session{
		UserID:       user.ID,
		Username:     user.DisplayName(),
		HasAdminRole: hasAdminRole,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue session token")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.log.Info().Str("user_id", user.ID).Bool("has_admin_role", hasAdminRole).Msg("user logged in")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	http.Redirect(w, r, "/login", http.StatusFound)
}
