package handler

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"sharednotes/internal/auth"
	"sharednotes/internal/note"
)

type SearchHandler struct {
	Svc *note.Service
	Log zerolog.Logger
}

// Search runs the criteria-driven search. Unlike the listing routes it
// refuses a request carrying neither a query nor tags.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	section, err := note.ParseSection(
		strings.TrimSpace(defaulted(r.URL.Query().Get("section"), string(note.SectionPrivate))))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	page, perPage, err := parsePage(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	tagIDs, err := parseTagIDs(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	criteria := note.SearchCriteria{
		UserID:  uid,
		Query:   r.URL.Query().Get("q"),
		TagIDs:  tagIDs,
		Section: section,
		Page:    page,
		PerPage: perPage,
	}

	notes, pagination, err := h.Svc.Search(r.Context(), criteria)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, toNotesList(notes, pagination))
}

func defaulted(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
