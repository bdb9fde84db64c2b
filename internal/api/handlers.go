package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/ticketwatch/transcripts/internal/auth"
	"github.com/ticketwatch/transcripts/internal/config"
	"github.com/ticketwatch/transcripts/internal/core"
	"github.com/ticketwatch/transcripts/internal/discord"
	"github.com/ticketwatch/transcripts/internal/store"
)

type APIHandler struct {
	transcripts *core.TranscriptService
	sessions    *auth.SessionManager
	oauth       *oauth2.Config
	discord     *discord.Client
	cfg         *config.Config
	apiKey      string
	log         zerolog.Logger
}

func NewAPIHandler(ts *core.TranscriptService, sm *auth.SessionManager, oauthCfg *oauth2.Config, dc *discord.Client, cfg *config.Config, log zerolog.Logger) *APIHandler {
	return &APIHandler{
		transcripts: ts,
		sessions:    sm,
		oauth:       oauthCfg,
		discord:     dc,
		cfg:         cfg,
		apiKey:      cfg.TranscriptAPIKey,
		log:         log,
	}
}

func (h *APIHandler) ListTranscriptsHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.transcripts.List(r.Context(), sess, page, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", sess.UserID).Msg("failed to list transcripts")
		writeError(w, http.StatusInternalServerError, "Failed to list transcripts")
		return
	}

	writeSuccess(w, http.StatusOK, envelope{
		"transcripts": result.Items,
		"count":       result.Count,
		"page":        result.Page,
		"totalPages":  result.TotalPages,
	})
}

func (h *APIHandler) GetTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	ticketID := chi.URLParam(r, "ticketID")

	t, err := h.transcripts.Get(r.Context(), sess, ticketID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Transcript not found")
		return
	case errors.Is(err, core.ErrForbidden):
		writeError(w, http.StatusForbidden, "You do not have permission to view this transcript")
		return
	case err != nil:
		h.log.Error().Err(err).Str("ticket_id", ticketID).Msg("failed to get transcript")
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeSuccess(w, http.StatusOK, envelope{"transcript": t})
}

type uploadTranscriptRequest struct {
	TicketID    string          `json:"ticket_id"`
	HTMLContent string          `json:"html_content"`
	Messages    []store.Message `json:"messages"`
	CreatorID   string          `json:"creator_id"`
	CreatorName string          `json:"creator_name"`
}

func (h *APIHandler) UploadTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	var req uploadTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.transcripts.Upload(r.Context(), core.UploadInput{
		TicketID:    req.TicketID,
		HTMLContent: req.HTMLContent,
		Messages:    req.Messages,
		CreatorID:   req.CreatorID,
		CreatorName: req.CreatorName,
	})
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Str("ticket_id", req.TicketID).Msg("failed to store transcript")
		writeError(w, http.StatusInternalServerError, "Failed to store transcript")
		return
	}

	message := "Transcript updated successfully."
	if result.Created {
		message = "Transcript uploaded successfully."
	}
	writeSuccess(w, http.StatusOK, envelope{
		"url":     h.cfg.TranscriptURL(result.Transcript.TicketID),
		"message": message,
	})
}

// CheckRoleHandler reports the admin flag of the current session. The role
// was resolved once at login; this never re-queries Discord.
func (h *APIHandler) CheckRoleHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	writeSuccess(w, http.StatusOK, envelope{
		"hasAdminRole": sess.HasAdminRole,
		"userId":       sess.UserID,
	})
}
