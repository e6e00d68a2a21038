package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"sharednotes/internal/auth"
	"sharednotes/internal/directory"
)

type MeHandler struct {
	Dir directory.Directory
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	email, err := h.Dir.EmailByUserID(r.Context(), uid)
	if err != nil && !errors.Is(err, directory.ErrUserNotFound) {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user_id": uid,
		"email":   email,
	})
}
