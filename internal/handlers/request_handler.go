package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vedaBack/internal/models"
	"vedaBack/internal/services"
)

type RequestHandler struct {
	Service *services.RequestService
}

func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req models.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	req.UserID = userID

	created, err := h.Service.CreateRequest(r.Context(), req)
	if err != nil {
		http.Error(w, "could not create request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	req, err := h.Service.GetRequest(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, models.ErrRequestNotFound) {
			http.Error(w, "request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(req)
}

func (h *RequestHandler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	callerID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.UpdateRequestStatus(r.Context(), requestID, input.Status, callerID); err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, models.ErrRequestNotFound):
			http.Error(w, "request not found", http.StatusNotFound)
		case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrInvalidState):
			http.Error(w, "status transition not allowed", http.StatusConflict)
		default:
			http.Error(w, "could not update request status", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RequestHandler) SetAdminCreditCost(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	var input struct {
		CreditCost *int `json:"credit_cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetAdminCreditCost(r.Context(), requestID, input.CreditCost); err != nil {
		switch {
		case errors.Is(err, models.ErrRequestNotFound):
			http.Error(w, "request not found", http.StatusNotFound)
		case errors.Is(err, models.ErrInvalidState):
			http.Error(w, "credit cost must not be negative", http.StatusBadRequest)
		default:
			http.Error(w, "could not set credit cost", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
