package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TranscriptStore struct {
	pool *pgxpool.Pool
}

func NewTranscriptStore(pool *pgxpool.Pool) *TranscriptStore {
	return &TranscriptStore{pool: pool}
}

const transcriptColumns = `id, ticket_id, html_content, messages, creator_id, creator_name, created_at, updated_at`

func (s *TranscriptStore) GetByTicketID(ctx context.Context, ticketID string) (*Transcript, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE ticket_id = $1`, ticketID)

	t, err := scanTranscript(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query transcript %q: %w", ticketID, err)
	}
	return t, nil
}

type ListParams struct {
	Page     int // 1-based
	PageSize int
	// CreatorID limits results to one owner when non-empty.
	CreatorID string
}

// List returns one page of transcripts ordered by creation time, newest
// first, along with the total number of matching rows.
func (s *TranscriptStore) List(ctx context.Context, p ListParams) ([]Transcript, int, error) {
	offset := (p.Page - 1) * p.PageSize

	query := `SELECT ` + transcriptColumns + `, COUNT(*) OVER() AS total
	          FROM transcripts`
	args := []any{}
	if p.CreatorID != "" {
		query += ` WHERE creator_id = $1`
		args = append(args, p.CreatorID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, p.PageSize, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var (
		items []Transcript
		total int
	)
	for rows.Next() {
		var (
			t           Transcript
			messagesRaw []byte
		)
		if err := rows.Scan(&t.ID, &t.TicketID, &t.HTMLContent, &messagesRaw,
			&t.CreatorID, &t.CreatorName, &t.CreatedAt, &t.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan transcript row: %w", err)
		}
		if err := unmarshalMessages(messagesRaw, &t); err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transcripts: %w", err)
	}

	// The windowed count vanishes with an empty page; fetch it separately
	// so callers still get the real total past the last page.
	if len(items) == 0 {
		if err := s.countRows(ctx, p.CreatorID, &total); err != nil {
			return nil, 0, err
		}
	}

	return items, total, nil
}

func (s *TranscriptStore) countRows(ctx context.Context, creatorID string, total *int) error {
	var (
		query = `SELECT COUNT(*) FROM transcripts`
		args  []any
	)
	if creatorID != "" {
		query += ` WHERE creator_id = $1`
		args = append(args, creatorID)
	}
	if err := s.pool.QueryRow(ctx, query, args...).Scan(total); err != nil {
		return fmt.Errorf("count transcripts: %w", err)
	}
	return nil
}

type UpsertParams struct {
	TicketID    string
	HTMLContent string
	Messages    []Message
	CreatorID   string
	CreatorName string
}

// Upsert inserts a transcript for a new ticket id or replaces the content
// of an existing one in a single statement, so concurrent uploads for the
// same ticket id cannot create duplicate rows. The returned flag is true
// when a new row was created.
func (s *TranscriptStore) Upsert(ctx context.Context, p UpsertParams) (*Transcript, bool, error) {
	var messagesRaw []byte
	if len(p.Messages) > 0 {
		var err error
		messagesRaw, err = json.Marshal(p.Messages)
		if err != nil {
			return nil, false, fmt.Errorf("marshal messages: %w", err)
		}
	}

	// xmax = 0 only holds for freshly inserted rows.
	row := s.pool.QueryRow(ctx,
		`INSERT INTO transcripts (ticket_id, html_content, messages, creator_id, creator_name)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (ticket_id) DO UPDATE SET
		     html_content = EXCLUDED.html_content,
		     messages     = EXCLUDED.messages,
		     creator_id   = EXCLUDED.creator_id,
		     creator_name = EXCLUDED.creator_name,
		     updated_at   = now()
		 RETURNING `+transcriptColumns+`, (xmax = 0) AS inserted`,
		p.TicketID, p.HTMLContent, messagesRaw, p.CreatorID, p.CreatorName)

	var (
		t        Transcript
		raw      []byte
		inserted bool
	)
	if err := row.Scan(&t.ID, &t.TicketID, &t.HTMLContent, &raw,
		&t.CreatorID, &t.CreatorName, &t.CreatedAt, &t.UpdatedAt, &inserted); err != nil {
		return nil, false, fmt.Errorf("upsert transcript %q: %w", p.TicketID, err)
	}
	if err := unmarshalMessages(raw, &t); err != nil {
		return nil, false, err
	}
	return &t, inserted, nil
}

func scanTranscript(row pgx.Row) (*Transcript, error) {
	var (
		t           Transcript
		messagesRaw []byte
	)
	if err := row.Scan(&t.ID, &t.TicketID, &t.HTMLContent, &messagesRaw,
		&t.CreatorID, &t.CreatorName, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalMessages(messagesRaw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func unmarshalMessages(raw []byte, t *Transcript) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &t.Messages); err != nil {
		return fmt.Errorf("unmarshal messages for %q: %w", t.TicketID, err)
	}
	return nil
}
