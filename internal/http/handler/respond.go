package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sharednotes/internal/note"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the core's error taxonomy onto response codes.
// Anything unclassified is a server fault: logged with context,
// surfaced opaquely.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var ve *note.ValidationError
	var ute *note.UnresolvedTargetError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: ve.Msg})
	case errors.As(err, &ute):
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: ute.Error()})
	case errors.Is(err, note.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "not found"})
	case errors.Is(err, note.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, errorBody{Detail: "access denied"})
	case errors.Is(err, note.ErrTagExists):
		writeJSON(w, http.StatusConflict, errorBody{Detail: "tag already exists"})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "server error"})
	}
}

const defaultPerPage = 15

func parsePage(r *http.Request) (page, perPage int, err error) {
	page, perPage = 1, defaultPerPage
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, &note.ValidationError{Msg: "page must be an integer"}
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		perPage, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, &note.ValidationError{Msg: "limit must be an integer"}
		}
	}
	return page, perPage, nil
}

// parseTagIDs reads a comma-separated uuid list from the "tags" query
// parameter. Malformed ids are a validation failure; whether the ids
// exist is the caller's business.
func parseTagIDs(r *http.Request) ([]uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("tags"))
	if raw == "" {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, &note.ValidationError{Msg: "invalid tag id format"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type tagDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type noteDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner_id"`
	Tags      []tagDTO  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type notesListResponse struct {
	Notes      []noteDTO       `json:"notes"`
	Pagination note.Pagination `json:"pagination"`
}

func toNoteDTO(n note.Note) noteDTO {
	tags := make([]tagDTO, 0, len(n.Tags))
	for _, t := range n.Tags {
		tags = append(tags, tagDTO{ID: t.ID.String(), Name: t.Name})
	}
	return noteDTO{
		ID:        n.ID.String(),
		Title:     n.Title,
		Content:   n.Content,
		OwnerID:   n.OwnerID.String(),
		Tags:      tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNotesList(notes []note.Note, p note.Pagination) notesListResponse {
	out := make([]noteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteDTO(n))
	}
	return notesListResponse{Notes: out, Pagination: p}
}
