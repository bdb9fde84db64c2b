// Package web serves the browser-facing pages. Rendering is intentionally
// bare: the pages exist for the auth redirect and access-control behavior,
// styling is out of scope.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ticketwatch/transcripts/internal/auth"
	"github.com/ticketwatch/transcripts/internal/core"
	"github.com/ticketwatch/transcripts/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

type PageHandler struct {
	transcripts *core.TranscriptService
	templates   *template.Template
	log         zerolog.Logger
}

func NewPageHandler(ts *core.TranscriptService, log zerolog.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{transcripts: ts, templates: tmpl, log: log}, nil
}

func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", nil)
}

type listPageData struct {
	Username   string
	IsAdmin    bool
	Items      []core.TranscriptSummary
	Count      int
	Page       int
	TotalPages int
}

func (h *PageHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	page, err := h.transcripts.List(r.Context(), sess, 1, core.DefaultPageSize)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to render transcript list")
		http.Error(w, "Failed to load transcripts", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "transcripts.html", listPageData{
		Username:   sess.Username,
		IsAdmin:    sess.HasAdminRole,
		Items:      page.Items,
		Count:      page.Count,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

type detailPageData struct {
	TicketID string
	Creator  string
	// Transcript HTML is produced by the ticket bot and rendered as-is.
	Content  template.HTML
	Messages []store.Message
}

// DetailPage renders one transcript. Unauthorized and not-found are kept
// as distinct pages: ticket ids are opaque, so existence disclosure is
// preferred over confusing the two states.
func (h *PageHandler) DetailPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	ticketID := chi.URLParam(r, "ticketID")

	t, err := h.transcripts.Get(r.Context(), sess, ticketID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.render(w, http.StatusNotFound, "not_found.html", ticketID)
		return
	case errors.Is(err, core.ErrForbidden):
		h.render(w, http.StatusForbidden, "unauthorized.html", ticketID)
		return
	case err != nil:
		h.log.Error().Err(err).Str("ticket_id", ticketID).Msg("failed to render transcript")
		http.Error(w, "Failed to load transcript", http.StatusInternalServerError)
		return
	}

	creator := t.CreatorName
	if creator == "" {
		creator = t.CreatorID
	}
	h.render(w, http.StatusOK, "transcript.html", detailPageData{
		TicketID: t.TicketID,
		Creator:  creator,
		Content:  template.HTML(t.HTMLContent),
		Messages: t.Messages,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("template execution failed")
	}
}
