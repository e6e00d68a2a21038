package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharednotes/internal/auth"
	"sharednotes/internal/directory"
	"sharednotes/internal/note"
)

// memStore is a map-backed note.Store. Listing and search return the
// viewer's own notes newest-insertion-last so the handlers have
// something deterministic to page over.
type memStore struct {
	notes  map[uuid.UUID]*note.Note
	order  []uuid.UUID
	shares map[uuid.UUID]*note.Share
}

func newMemStore() *memStore {
	return &memStore{
		notes:  map[uuid.UUID]*note.Note{},
		shares: map[uuid.UUID]*note.Share{},
	}
}

func (m *memStore) CreateNote(_ context.Context, n *note.Note) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	m.notes[n.ID] = &cp
	m.order = append(m.order, n.ID)
	return nil
}

func (m *memStore) NoteByID(_ context.Context, noteID, viewerID uuid.UUID) (*note.Note, error) {
	n, ok := m.notes[noteID]
	if !ok || n.IsDeleted {
		return nil, nil
	}
	if n.OwnerID == viewerID {
		cp := *n
		return &cp, nil
	}
	for _, sh := range m.shares {
		if sh.NoteID == noteID && sh.GranteeID == viewerID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateNote(_ context.Context, n *note.Note) error {
	cur, ok := m.notes[n.ID]
	if !ok || cur.IsDeleted {
		return note.ErrNotFound
	}
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m *memStore) SoftDeleteNote(_ context.Context, noteID, ownerID uuid.UUID) (bool, error) {
	n, ok := m.notes[noteID]
	if !ok || n.IsDeleted || n.OwnerID != ownerID {
		return false, nil
	}
	n.IsDeleted = true
	return true, nil
}

func (m *memStore) owned(userID uuid.UUID) []note.Note {
	var out []note.Note
	for _, id := range m.order {
		n := m.notes[id]
		if !n.IsDeleted && n.OwnerID == userID {
			out = append(out, *n)
		}
	}
	return out
}

func pageOf(all []note.Note, page, perPage int) ([]note.Note, int64) {
	total := int64(len(all))
	start := note.Offset(page, perPage)
	if start >= len(all) {
		return nil, total
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total
}

func (m *memStore) granted(noteID uuid.UUID) bool {
	for _, sh := range m.shares {
		if sh.NoteID == noteID {
			return true
		}
	}
	return false
}

func (m *memStore) ListNotes(_ context.Context, q note.ListQuery) ([]note.Note, int64, error) {
	var all []note.Note
	switch {
	case q.Section == nil:
		all = m.owned(q.UserID)
	case *q.Section == note.SectionSharedWithMe:
		for _, id := range m.order {
			n := m.notes[id]
			if n.IsDeleted {
				continue
			}
			for _, sh := range m.shares {
				if sh.NoteID == id && sh.GranteeID == q.UserID {
					all = append(all, *n)
					break
				}
			}
		}
	default:
		for _, n := range m.owned(q.UserID) {
			if m.granted(n.ID) == (*q.Section == note.SectionSharedByMe) {
				all = append(all, n)
			}
		}
	}
	notes, total := pageOf(all, q.Page, q.PerPage)
	return notes, total, nil
}

func (m *memStore) SearchNotes(_ context.Context, c note.SearchCriteria) ([]note.Note, int64, error) {
	var hits []note.Note
	for _, n := range m.owned(c.UserID) {
		if c.HasTextSearch() && !strings.Contains(strings.ToLower(n.Title+" "+n.Content), strings.ToLower(c.Query)) {
			continue
		}
		hits = append(hits, n)
	}
	notes, total := pageOf(hits, c.Page, c.PerPage)
	return notes, total, nil
}

func (m *memStore) CreateShare(_ context.Context, noteID, granterID, granteeID uuid.UUID) (*note.Share, bool, error) {
	for _, sh := range m.shares {
		if sh.NoteID == noteID && sh.GranteeID == granteeID {
			cp := *sh
			return &cp, false, nil
		}
	}
	sh := &note.Share{ID: uuid.New(), NoteID: noteID, GranterID: granterID, GranteeID: granteeID}
	m.shares[sh.ID] = sh
	cp := *sh
	return &cp, true, nil
}

func (m *memStore) DeleteShare(_ context.Context, noteID, shareID uuid.UUID) (bool, error) {
	sh, ok := m.shares[shareID]
	if !ok || sh.NoteID != noteID {
		return false, nil
	}
	delete(m.shares, shareID)
	return true, nil
}

func (m *memStore) DeleteShareByGrantee(_ context.Context, noteID, granteeID uuid.UUID) (bool, error) {
	for id, sh := range m.shares {
		if sh.NoteID == noteID && sh.GranteeID == granteeID {
			delete(m.shares, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SharesForNote(_ context.Context, noteID uuid.UUID) ([]note.Share, error) {
	var out []note.Share
	for _, sh := range m.shares {
		if sh.NoteID == noteID {
			out = append(out, *sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

type memTags struct{ known map[uuid.UUID]note.Tag }

func (m *memTags) TagsByIDs(_ context.Context, ids []uuid.UUID) ([]note.Tag, error) {
	var out []note.Tag
	for _, id := range ids {
		if t, ok := m.known[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type memDir struct{ byEmail map[string]uuid.UUID }

func (m *memDir) UserIDByEmail(_ context.Context, email string) (uuid.UUID, error) {
	if id, ok := m.byEmail[email]; ok {
		return id, nil
	}
	return uuid.Nil, directory.ErrUserNotFound
}

func (m *memDir) EmailByUserID(_ context.Context, id uuid.UUID) (string, error) {
	for email, uid := range m.byEmail {
		if uid == id {
			return email, nil
		}
	}
	return "", directory.ErrUserNotFound
}

type testEnv struct {
	router  http.Handler
	store   *memStore
	user    uuid.UUID
	grantee uuid.UUID
}

// newTestEnv mounts the note routes behind a middleware that stamps a
// fixed user into the context, standing in for the JWT layer.
func newTestEnv() *testEnv {
	store := newMemStore()
	user := uuid.New()
	grantee := uuid.New()

	svc := &note.Service{
		Store: store,
		Tags:  &memTags{known: map[uuid.UUID]note.Tag{}},
		Dir: &memDir{byEmail: map[string]uuid.UUID{
			"me@example.com":  user,
			"bob@example.com": grantee,
		}},
		Log: zerolog.Nop(),
	}

	log := zerolog.Nop()
	noteH := &NoteHandler{Svc: svc, Log: log}
	searchH := &SearchHandler{Svc: svc, Log: log}
	shareH := &ShareHandler{Svc: svc, Log: log}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), user)))
		})
	})
	r.Route("/notes", func(r chi.Router) {
		r.Post("/", noteH.Create)
		r.Get("/", noteH.List)
		r.Get("/private", noteH.ListSection(note.SectionPrivate))
		r.Get("/shared-by-me", noteH.ListSection(note.SectionSharedByMe))
		r.Get("/shared-with-me", noteH.ListSection(note.SectionSharedWithMe))
		r.Get("/{id}", noteH.Get)
		r.Put("/{id}", noteH.Update)
		r.Delete("/{id}", noteH.Delete)
		r.Post("/{id}/share", shareH.Create)
		r.Get("/{id}/shares", shareH.List)
		r.Delete("/{id}/shares/{shareID}", shareH.Remove)
		r.Delete("/{id}/shares/by-email/{email}", shareH.RemoveByEmail)
	})
	r.Get("/search", searchH.Search)

	return &testEnv{router: r, store: store, user: user, grantee: grantee}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestCreateNoteEndpoint(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/notes/", `{"title":"First","content":"hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode[noteDTO](t, w)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, env.user.String(), got.OwnerID)
	assert.NotEmpty(t, got.ID)
	assert.Empty(t, got.Tags)
}

func TestCreateNoteRejectsBadInput(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/notes/", `{"title":"","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/notes/", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/notes/", `{"title":"t","content":"c","tag_ids":["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid tag id format")
}

func TestCreateNoteUnresolvedShareTarget(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/notes/",
		`{"title":"t","content":"c","share_emails":["ghost@example.com"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ghost@example.com")
}

func TestGetNoteEndpoint(t *testing.T) {
	env := newTestEnv()

	created := decode[noteDTO](t, env.do(t, http.MethodPost, "/notes/", `{"title":"t","content":"c"}`))

	w := env.do(t, http.MethodGet, "/notes/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[noteDTO](t, w).ID)

	w = env.do(t, http.MethodGet, "/notes/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/notes/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateNoteTagSemantics(t *testing.T) {
	env := newTestEnv()

	created := decode[noteDTO](t, env.do(t, http.MethodPost, "/notes/", `{"title":"t","content":"c"}`))

	// Omitting tag_ids keeps the set, sending [] clears it. Both paths
	// must be accepted; the title change proves the update ran.
	w := env.do(t, http.MethodPut, "/notes/"+created.ID, `{"title":"kept"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kept", decode[noteDTO](t, w).Title)

	w = env.do(t, http.MethodPut, "/notes/"+created.ID, `{"tag_ids":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[noteDTO](t, w).Tags)

	w = env.do(t, http.MethodPut, "/notes/"+created.ID, `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteNoteEndpoint(t *testing.T) {
	env := newTestEnv()

	created := decode[noteDTO](t, env.do(t, http.MethodPost, "/notes/", `{"title":"t","content":"c"}`))

	w := env.do(t, http.MethodDelete, "/notes/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/notes/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/notes/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPaginationEnvelope(t *testing.T) {
	env := newTestEnv()

	for i := 0; i < 3; i++ {
		env.do(t, http.MethodPost, "/notes/", `{"title":"n","content":"c"}`)
	}

	w := env.do(t, http.MethodGet, "/notes/?page=1&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[notesListResponse](t, w)
	assert.Len(t, got.Notes, 2)
	assert.Equal(t, 2, got.Pagination.TotalPages)
	assert.EqualValues(t, 3, got.Pagination.TotalNotes)
	assert.True(t, got.Pagination.HasNext)

	// Empty sets still answer page 1 of 1.
	w = env.do(t, http.MethodGet, "/notes/shared-with-me", "")
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[notesListResponse](t, w)
	assert.Empty(t, got.Notes)
	assert.Equal(t, 1, got.Pagination.TotalPages)

	w = env.do(t, http.MethodGet, "/notes/?page=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/notes/?page=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/notes/?limit=101", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	env := newTestEnv()

	env.do(t, http.MethodPost, "/notes/", `{"title":"meeting plan","content":"agenda"}`)
	env.do(t, http.MethodPost, "/notes/", `{"title":"groceries","content":"milk"}`)

	w := env.do(t, http.MethodGet, "/search?q=meeting", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[notesListResponse](t, w)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "meeting plan", got.Notes[0].Title)

	// Neither query nor tags.
	w = env.do(t, http.MethodGet, "/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/search?q=a", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/search?q=meeting&section=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/search?q=meeting&tags=not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareEndpoints(t *testing.T) {
	env := newTestEnv()

	created := decode[noteDTO](t, env.do(t, http.MethodPost, "/notes/", `{"title":"t","content":"c"}`))

	w := env.do(t, http.MethodPost, "/notes/"+created.ID+"/share", `{"emails":["bob@example.com"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	got := decode[sharesResponse](t, w)
	require.Len(t, got.Shares, 1)
	assert.Equal(t, "bob@example.com", got.Shares[0].GranteeEmail)
	assert.Equal(t, env.grantee.String(), got.Shares[0].GranteeID)

	// Sharing again changes nothing.
	w = env.do(t, http.MethodPost, "/notes/"+created.ID+"/share", `{"emails":["bob@example.com"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, decode[sharesResponse](t, w).Shares, 1)

	w = env.do(t, http.MethodPost, "/notes/"+created.ID+"/share", `{"emails":["me@example.com"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "self-share refused")

	w = env.do(t, http.MethodPost, "/notes/"+created.ID+"/share", `{"emails":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/notes/"+created.ID+"/shares", "")
	require.Equal(t, http.StatusOK, w.Code)
	shares := decode[sharesResponse](t, w).Shares
	require.Len(t, shares, 1)

	w = env.do(t, http.MethodDelete, "/notes/"+created.ID+"/shares/"+shares[0].ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/notes/"+created.ID+"/shares/"+shares[0].ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnshareByEmailEndpoint(t *testing.T) {
	env := newTestEnv()

	created := decode[noteDTO](t, env.do(t, http.MethodPost, "/notes/", `{"title":"t","content":"c"}`))
	env.do(t, http.MethodPost, "/notes/"+created.ID+"/share", `{"emails":["bob@example.com"]}`)

	w := env.do(t, http.MethodDelete, "/notes/"+created.ID+"/shares/by-email/bob@example.com", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/notes/"+created.ID+"/shares/by-email/bob@example.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "share already gone")

	w = env.do(t, http.MethodDelete, "/notes/"+created.ID+"/shares/by-email/ghost@example.com", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown address is a client fault")
}
