package handler

import (
	"net/http"

	"sharednotes/internal/auth"
	"sharednotes/internal/note"
)

// List returns every non-deleted note the user owns, newest first.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

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

	notes, pagination, err := h.Svc.ListOwned(r.Context(), uid, page, perPage, tagIDs)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, toNotesList(notes, pagination))
}

// ListSection serves one of the three visibility sections. The section
// is fixed per route, so an unknown value can only come from a bug in
// the routing table.
func (h *NoteHandler) ListSection(section note.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := auth.UserIDFromContext(r.Context())

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

		notes, pagination, err := h.Svc.ListSection(r.Context(), uid, section, page, perPage, tagIDs)
		if err != nil {
			writeError(w, h.Log, err)
			return
		}

		writeJSON(w, http.StatusOK, toNotesList(notes, pagination))
	}
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	n, err := h.Svc.Get(r.Context(), uid, noteID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteDTO(*n))
}
