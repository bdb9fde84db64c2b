package core

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketwatch/transcripts/internal/auth"
	"github.com/ticketwatch/transcripts/internal/store"
)

// fakeStore implements TranscriptStore in memory with upsert semantics
// matching the real store.
type fakeStore struct {
	byTicket   map[string]*store.Transcript
	lastParams store.ListParams
	err        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byTicket: map[string]*store.Transcript{}}
}

func (f *fakeStore) GetByTicketID(_ context.Context, ticketID string) (*store.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.byTicket[ticketID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) List(_ context.Context, p store.ListParams) ([]store.Transcript, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.lastParams = p

	var all []store.Transcript
	for _, t := range f.byTicket {
		if p.CreatorID != "" && t.CreatorID != p.CreatorID {
			continue
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeStore) Upsert(_ context.Context, p store.UpsertParams) (*store.Transcript, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	existing, ok := f.byTicket[p.TicketID]
	if ok {
		existing.HTMLContent = p.HTMLContent
		existing.Messages = p.Messages
		existing.CreatorID = p.CreatorID
		existing.CreatorName = p.CreatorName
		existing.UpdatedAt = time.Now()
		copied := *existing
		return &copied, false, nil
	}

	t := &store.Transcript{
		ID:          uuid.New(),
		TicketID:    p.TicketID,
		HTMLContent: p.HTMLContent,
		Messages:    p.Messages,
		CreatorID:   p.CreatorID,
		CreatorName: p.CreatorName,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.byTicket[p.TicketID] = t
	copied := *t
	return &copied, true, nil
}

func newTestService(fs *fakeStore) *TranscriptService {
	return NewTranscriptService(fs, zerolog.Nop())
}

func seed(fs *fakeStore, ticketID, creatorID, html string, createdAt time.Time) {
	fs.byTicket[ticketID] = &store.Transcript{
		ID:          uuid.New(),
		TicketID:    ticketID,
		HTMLContent: html,
		CreatorID:   creatorID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	fs := newFakeStore()
	seed(fs, "T-1", "u1", "<p>hi</p>", time.Now())
	svc := newTestService(fs)
	ctx := context.Background()

	got, err := svc.Get(ctx, &auth.Session{UserID: "u1"}, "T-1")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", got.HTMLContent)

	_, err = svc.Get(ctx, &auth.Session{UserID: "u2"}, "T-1")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = svc.Get(ctx, &auth.Session{UserID: "u2", HasAdminRole: true}, "T-1")
	require.NoError(t, err)
	assert.Equal(t, "T-1", got.TicketID)
}

func TestGetMissingTicket(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Get(context.Background(), &auth.Session{UserID: "u1", HasAdminRole: true}, "T-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListFiltersToOwnerForNonAdmins(t *testing.T) {
	fs := newFakeStore()
	seed(fs, "T-1", "u1", "a", time.Now())
	seed(fs, "T-2", "u2", "b", time.Now())
	svc := newTestService(fs)

	page, err := svc.List(context.Background(), &auth.Session{UserID: "u1"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "u1", fs.lastParams.CreatorID)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "T-1", page.Items[0].TicketID)
}

func TestListAdminSeesEverything(t *testing.T) {
	fs := newFakeStore()
	seed(fs, "T-1", "u1", "a", time.Now())
	seed(fs, "T-2", "u2", "b", time.Now())
	svc := newTestService(fs)

	page, err := svc.List(context.Background(), &auth.Session{UserID: "u3", HasAdminRole: true}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, fs.lastParams.CreatorID)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Count)
}

func TestListOrdersNewestFirstAndPaginates(t *testing.T) {
	fs := newFakeStore()
	base := time.Now()
	for i, id := range []string{"T-1", "T-2", "T-3", "T-4", "T-5"} {
		seed(fs, id, "u1", "x", base.Add(time.Duration(i)*time.Minute))
	}
	svc := newTestService(fs)
	sess := &auth.Session{UserID: "u1"}

	page, err := svc.List(context.Background(), sess, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "T-5", page.Items[0].TicketID)
	assert.Equal(t, "T-4", page.Items[1].TicketID)
	assert.Equal(t, 5, page.Count)
	assert.Equal(t, 3, page.TotalPages) // ceil(5/2)

	last, err := svc.List(context.Background(), sess, 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "T-1", last.Items[0].TicketID)
}

func TestListClampsPageAndLimit(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	sess := &auth.Session{UserID: "u1"}

	_, err := svc.List(context.Background(), sess, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fs.lastParams.Page)
	assert.Equal(t, DefaultPageSize, fs.lastParams.PageSize)

	_, err = svc.List(context.Background(), sess, -3, 9999)
	require.NoError(t, err)
	assert.Equal(t, 1, fs.lastParams.Page)
	assert.Equal(t, MaxPageSize, fs.lastParams.PageSize)
}

func TestListComputesHTMLLength(t *testing.T) {
	fs := newFakeStore()
	seed(fs, "T-1", "u1", "<p>hi</p>", time.Now())
	svc := newTestService(fs)

	page, err := svc.List(context.Background(), &auth.Session{UserID: "u1"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, len("<p>hi</p>"), page.Items[0].HTMLLength)
}

func TestUploadValidation(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	cases := []UploadInput{
		{CreatorID: "u1", HTMLContent: "x"}, // no ticket id
		{TicketID: "T-1", HTMLContent: "x"}, // no creator
		{TicketID: "T-1", CreatorID: "u1"},  // no content
	}
	for _, in := range cases {
		_, err := svc.Upload(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestUploadIsIdempotentByTicketID(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	first, err := svc.Upload(ctx, UploadInput{TicketID: "T-1", HTMLContent: "<p>v1</p>", CreatorID: "u1"})
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := svc.Upload(ctx, UploadInput{TicketID: "T-1", HTMLContent: "<p>v2</p>", CreatorID: "u1"})
	require.NoError(t, err)
	assert.False(t, second.Created)

	assert.Len(t, fs.byTicket, 1)
	assert.Equal(t, "<p>v2</p>", fs.byTicket["T-1"].HTMLContent)
	assert.Equal(t, first.Transcript.ID, second.Transcript.ID)
}

func TestUploadAcceptsMessagesInsteadOfHTML(t *testing.T) {
	svc := newTestService(newFakeStore())

	result, err := svc.Upload(context.Background(), UploadInput{
		TicketID:  "T-1",
		CreatorID: "u1",
		Messages: []store.Message{
			{User: "kira", Content: "hello", Timestamp: time.Now()},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Transcript.Messages, 1)
	assert.Equal(t, "hello", result.Transcript.Messages[0].Content)
}
