package core

import (
	"github.com/ticketwatch/transcripts/internal/auth"
	"github.com/ticketwatch/transcripts/internal/store"
)

// CanRead is the single read-authorization predicate: admins can read
// every transcript, everyone else only their own. Handlers must not
// re-derive this from anything the client sends.
func CanRead(sess *auth.Session, t *store.Transcript) bool {
	if sess == nil || t == nil {
		return false
	}
	return sess.HasAdminRole || sess.UserID == t.CreatorID
}
