package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sharednotes/internal/auth"
	"sharednotes/internal/note"
)

type ShareHandler struct {
	Svc *note.Service
	Log zerolog.Logger
}

type shareDTO struct {
	ID           string    `json:"id"`
	NoteID       string    `json:"note_id"`
	GranterID    string    `json:"granter_id"`
	GranteeID    string    `json:"grantee_id"`
	GranteeEmail string    `json:"grantee_email"`
	CreatedAt    time.Time `json:"created_at"`
}

type sharesResponse struct {
	NoteID string     `json:"note_id"`
	Shares []shareDTO `json:"shares"`
}

type shareReq struct {
	Emails []string `json:"emails"`
}

func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req shareReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "bad json"})
		return
	}

	shares, err := h.Svc.Share(r.Context(), uid, noteID, req.Emails)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSharesResponse(noteID, shares))
}

func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	shares, err := h.Svc.Shares(r.Context(), uid, noteID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSharesResponse(noteID, shares))
}

func (h *ShareHandler) Remove(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	shareID, err := uuid.Parse(chi.URLParam(r, "shareID"))
	if err != nil {
		writeError(w, h.Log, &note.ValidationError{Msg: "invalid share id format"})
		return
	}

	if err := h.Svc.Unshare(r.Context(), uid, noteID, shareID); err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShareHandler) RemoveByEmail(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	email := chi.URLParam(r, "email")

	if err := h.Svc.UnshareByEmail(r.Context(), uid, noteID, email); err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toSharesResponse(noteID uuid.UUID, shares []note.ShareInfo) sharesResponse {
	out := make([]shareDTO, 0, len(shares))
	for _, s := range shares {
		out = append(out, shareDTO{
			ID:           s.ID.String(),
			NoteID:       s.NoteID.String(),
			GranterID:    s.GranterID.String(),
			GranteeID:    s.GranteeID.String(),
			GranteeEmail: s.GranteeEmail,
			CreatedAt:    s.CreatedAt,
		})
	}
	return sharesResponse{NoteID: noteID.String(), Shares: out}
}
