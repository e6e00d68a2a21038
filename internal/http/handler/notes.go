package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sharednotes/internal/auth"
	"sharednotes/internal/note"
)

type NoteHandler struct {
	Svc *note.Service
	Log zerolog.Logger
}

type createNoteReq struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	TagIDs      []string `json:"tag_ids"`
	ShareEmails []string `json:"share_emails"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "bad json"})
		return
	}

	tagIDs, err := parseUUIDs(req.TagIDs, "invalid tag id format")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	n, err := h.Svc.Create(r.Context(), uid, note.CreateNoteInput{
		Title:       req.Title,
		Content:     req.Content,
		TagIDs:      tagIDs,
		ShareEmails: req.ShareEmails,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteDTO(*n))
}

type updateNoteReq struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	TagIDs  *[]string `json:"tag_ids"`
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req updateNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "bad json"})
		return
	}

	in := note.UpdateNoteInput{Title: req.Title, Content: req.Content}
	if req.TagIDs != nil {
		tagIDs, err := parseUUIDs(*req.TagIDs, "invalid tag id format")
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		if tagIDs == nil {
			tagIDs = []uuid.UUID{}
		}
		in.TagIDs = tagIDs
	}

	n, err := h.Svc.Update(r.Context(), uid, noteID, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteDTO(*n))
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	if err := h.Svc.Delete(r.Context(), uid, noteID); err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func noteIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &note.ValidationError{Msg: "invalid note id format"}
	}
	return id, nil
}

func parseUUIDs(raw []string, errMsg string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, &note.ValidationError{Msg: errMsg}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
