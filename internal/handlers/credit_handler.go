package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vedaBack/internal/models"
	"vedaBack/internal/ratelimit"
	"vedaBack/internal/services"
)

type CreditHandler struct {
	Service *services.CreditService
}

func (h *CreditHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	companyID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	balance, err := h.Service.GetBalance(r.Context(), companyID)
	if err != nil {
		if errors.Is(err, models.ErrCompanyNotFound) {
			http.Error(w, "company not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch balance", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"balance": balance})
}

func (h *CreditHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	companyID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	txs, err := h.Service.ListTransactions(r.Context(), companyID)
	if err != nil {
		http.Error(w, "could not list transactions", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(txs)
}

func (h *CreditHandler) PurchaseCredits(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	companyID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	balance, err := h.Service.Purchase(r.Context(), companyID, input.Amount, companyID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrCompanyNotFound):
			http.Error(w, "company not found", http.StatusNotFound)
		case errors.Is(err, models.ErrStorageUnavailable):
			http.Error(w, "storage unavailable, retry later", http.StatusServiceUnavailable)
		default:
			http.Error(w, "could not purchase credits", http.StatusBadRequest)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"balance": balance})
}

// GetCompany returns the company record (balance, suspension flags) for
// the admin console.
func (h *CreditHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid company id", http.StatusBadRequest)
		return
	}
	company, err := h.Service.GetCompany(r.Context(), companyID)
	if err != nil {
		if errors.Is(err, models.ErrCompanyNotFound) {
			http.Error(w, "company not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch company", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(company)
}

// AdjustCredits is the admin-only signed balance correction. Audit data
// (actor, reason) ends up in audit_logs alongside the ledger entry.
func (h *CreditHandler) AdjustCredits(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid company id", http.StatusBadRequest)
		return
	}
	var input struct {
		Amount int    `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	actorID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	balance, err := h.Service.AdjustCredits(r.Context(), companyID, input.Amount, actorID, input.Reason, ratelimit.ClientKey(r))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRateLimited):
			http.Error(w, "too many requests, retry later", http.StatusTooManyRequests)
		case errors.Is(err, models.ErrReasonTooShort):
			http.Error(w, "adjustment reason is required", http.StatusBadRequest)
		case errors.Is(err, models.ErrInsufficientCredits):
			http.Error(w, "adjustment would take the balance below zero", http.StatusConflict)
		case errors.Is(err, models.ErrCompanyNotFound):
			http.Error(w, "company not found", http.StatusNotFound)
		case errors.Is(err, models.ErrStorageUnavailable):
			http.Error(w, "storage unavailable, retry later", http.StatusServiceUnavailable)
		default:
			http.Error(w, "could not adjust credits", http.StatusBadRequest)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"balance": balance})
}
