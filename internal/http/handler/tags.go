package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sharednotes/internal/note"
)

type TagHandler struct {
	Repo *note.TagRepo
	Log  zerolog.Logger
}

type tagReq struct {
	Name string `json:"name"`
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Repo.AllTags(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	out := make([]tagDTO, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagDTO{ID: t.ID.String(), Name: t.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tagReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "bad json"})
		return
	}

	t, err := h.Repo.CreateTag(r.Context(), req.Name)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, tagDTO{ID: t.ID.String(), Name: t.Name})
}

func (h *TagHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := tagIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req tagReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "bad json"})
		return
	}

	t, err := h.Repo.RenameTag(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, tagDTO{ID: t.ID.String(), Name: t.Name})
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := tagIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	removed, err := h.Repo.DeleteTag(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if !removed {
		writeError(w, h.Log, note.ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func tagIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &note.ValidationError{Msg: "invalid tag id format"}
	}
	return id, nil
}
