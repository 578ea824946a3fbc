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

type OfferHandler struct {
	Service *services.OfferService
}

func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RequestID int    `json:"request_id"`
		Price     int    `json:"price"`
		Message   string `json:"message"`
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

	offer := models.Offer{
		RequestID: input.RequestID,
		CompanyID: companyID,
		Price:     input.Price,
		Message:   input.Message,
	}
	created, err := h.Service.CreateOffer(r.Context(), offer, ratelimit.ClientKey(r))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRateLimited):
			http.Error(w, "too many requests, retry later", http.StatusTooManyRequests)
		case errors.Is(err, models.ErrInsufficientCredits):
			http.Error(w, "insufficient credits", http.StatusPaymentRequired)
		case errors.Is(err, models.ErrRequestNotFound):
			http.Error(w, "request not found", http.StatusNotFound)
		case errors.Is(err, models.ErrCompanySuspended):
			http.Error(w, "company suspended", http.StatusForbidden)
		case errors.Is(err, models.ErrInvalidState):
			http.Error(w, "request is not open for offers", http.StatusConflict)
		case errors.Is(err, models.ErrStorageUnavailable):
			http.Error(w, "storage unavailable, retry later", http.StatusServiceUnavailable)
		default:
			http.Error(w, "could not create offer", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.Atoi(r.URL.Query().Get(":request_id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	offerID, err := strconv.Atoi(r.URL.Query().Get(":offer_id"))
	if err != nil {
		http.Error(w, "invalid offer id", http.StatusBadRequest)
		return
	}
	callerID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.AcceptOffer(r.Context(), requestID, offerID, callerID, ratelimit.ClientKey(r)); err != nil {
		switch {
		case errors.Is(err, models.ErrRateLimited):
			http.Error(w, "too many requests, retry later", http.StatusTooManyRequests)
		case errors.Is(err, models.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, models.ErrRequestNotFound), errors.Is(err, models.ErrOfferNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, models.ErrInvalidState):
			http.Error(w, "offer is no longer pending", http.StatusConflict)
		case errors.Is(err, models.ErrStorageUnavailable):
			http.Error(w, "storage unavailable, retry later", http.StatusServiceUnavailable)
		default:
			http.Error(w, "could not accept offer", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OfferHandler) WithdrawOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid offer id", http.StatusBadRequest)
		return
	}
	companyID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.WithdrawOffer(r.Context(), offerID, companyID); err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, models.ErrOfferNotFound):
			http.Error(w, "offer not found", http.StatusNotFound)
		case errors.Is(err, models.ErrInvalidState):
			http.Error(w, "offer is no longer pending", http.StatusConflict)
		default:
			http.Error(w, "could not withdraw offer", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid offer id", http.StatusBadRequest)
		return
	}
	offer, err := h.Service.GetOffer(r.Context(), offerID)
	if err != nil {
		if errors.Is(err, models.ErrOfferNotFound) {
			http.Error(w, "offer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch offer", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offer)
}

func (h *OfferHandler) ListOffersByRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	offers, err := h.Service.ListOffers(r.Context(), requestID)
	if err != nil {
		http.Error(w, "could not list offers", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offers)
}
