package store

import (
	"time"

	"github.com/google/uuid"
)

// Transcript is one stored ticket transcript. ticket_id is the business
// key: uploads for an existing ticket id replace the content in place.
type Transcript struct {
	ID          uuid.UUID `json:"id"`
	TicketID    string    `json:"ticket_id"`
	HTMLContent string    `json:"html_content,omitempty"`
	Messages    []Message `json:"messages,omitempty"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Message is the structured alternative to raw HTML content. Order is
// insertion order within the transcript and never changes once stored.
type Message struct {
	User      string    `json:"user"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
