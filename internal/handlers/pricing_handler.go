package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vedaBack/internal/models"
	"vedaBack/internal/services"
)

type PricingHandler struct {
	Service *services.OfferService
}

// QuoteRequest returns the tier, label and credit cost a company would pay
// to bid on the request. No credits move.
func (h *PricingHandler) QuoteRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	quote, err := h.Service.Quote(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, models.ErrRequestNotFound) {
			http.Error(w, "request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not quote request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quote)
}
