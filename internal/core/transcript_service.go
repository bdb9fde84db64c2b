package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ticketwatch/transcripts/internal/auth"
	"github.com/ticketwatch/transcripts/internal/store"
)

// ErrForbidden means the session is valid but may not read the transcript.
var ErrForbidden = errors.New("not allowed to view this transcript")

// ErrInvalidInput wraps upload validation failures.
var ErrInvalidInput = errors.New("invalid input")

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// TranscriptStore is what the service needs from the storage layer.
type TranscriptStore interface {
	GetByTicketID(ctx context.Context, ticketID string) (*store.Transcript, error)
	List(ctx context.Context, p store.ListParams) ([]store.Transcript, int, error)
	Upsert(ctx context.Context, p store.UpsertParams) (*store.Transcript, bool, error)
}

type TranscriptService struct {
	store TranscriptStore
	log   zerolog.Logger
}

func NewTranscriptService(st TranscriptStore, log zerolog.Logger) *TranscriptService {
	return &TranscriptService{store: st, log: log}
}

// Get fetches one transcript and enforces the read gate for the session.
func (s *TranscriptService) Get(ctx context.Context, sess *auth.Session, ticketID string) (*store.Transcript, error) {
	t, err := s.store.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !CanRead(sess, t) {
		return nil, ErrForbidden
	}
	return t, nil
}

// TranscriptSummary is a list item: no content, just metadata plus the
// content length computed at response time.
type TranscriptSummary struct {
	ID          uuid.UUID `json:"id"`
	TicketID    string    `json:"ticket_id"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	HTMLLength  int       `json:"html_length"`
}

type TranscriptPage struct {
	Items      []TranscriptSummary
	Count      int
	Page       int
	TotalPages int
}

// List returns one page of transcripts visible to the session: admins see
// everything, other users only transcripts they created.
func (s *TranscriptService) List(ctx context.Context, sess *auth.Session, page, limit int) (*TranscriptPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	params := store.ListParams{Page: page, PageSize: limit}
	if !sess.HasAdminRole {
		params.CreatorID = sess.UserID
	}

	items, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	summaries := make([]TranscriptSummary, 0, len(items))
	for _, t := range items {
		summaries = append(summaries, TranscriptSummary{
			ID:          t.ID,
			TicketID:    t.TicketID,
			CreatorID:   t.CreatorID,
			CreatorName: t.CreatorName,
			CreatedAt:   t.CreatedAt,
			HTMLLength:  len(t.HTMLContent),
		})
	}

	return &TranscriptPage{
		Items:      summaries,
		Count:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

type UploadInput struct {
	TicketID    string
	HTMLContent string
	Messages    []store.Message
	CreatorID   string
	CreatorName string
}

type UploadResult struct {
	Transcript *store.Transcript
	Created    bool
}

// Upload validates the input and upserts the transcript keyed on its
// ticket id. Re-uploading a ticket replaces its content.
func (s *TranscriptService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.TicketID == "" {
		return nil, fmt.Errorf("%w: ticket_id is required", ErrInvalidInput)
	}
	if in.CreatorID == "" {
		return nil, fmt.Errorf("%w: creator_id is required", ErrInvalidInput)
	}
	if in.HTMLContent == "" && len(in.Messages) == 0 {
		return nil, fmt.Errorf("%w: html_content or messages is required", ErrInvalidInput)
	}

	t, created, err := s.store.Upsert(ctx, store.UpsertParams{
		TicketID:    in.TicketID,
		HTMLContent: in.HTMLContent,
		Messages:    in.Messages,
		CreatorID:   in.CreatorID,
		CreatorName: in.CreatorName,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("ticket_id", t.TicketID).
		Str("creator_id", t.CreatorID).
		Bool("created", created).
		Msg("transcript stored")

	return &UploadResult{Transcript: t, Created: created}, nil
}
