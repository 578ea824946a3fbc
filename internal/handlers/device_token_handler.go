package handlers

import (
	"encoding/json"
	"net/http"

	"vedaBack/internal/repositories"
)

type DeviceTokenHandler struct {
	Repo *repositories.DeviceTokenRepository
}

func (h *DeviceTokenHandler) SaveToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Repo.SaveToken(r.Context(), userID, input.Token); err != nil {
		http.Error(w, "could not save token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
