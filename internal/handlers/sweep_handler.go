package handlers

import (
	"encoding/json"
	"net/http"

	"vedaBack/internal/services"
)

// SweepHandler exposes the refund sweep to admins so support can trigger
// an out-of-schedule run after an incident.
type SweepHandler struct {
	Service *services.SweeperService
}

func (h *SweepHandler) RunRefundSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.RunRefundSweep(r.Context())
	if err != nil {
		http.Error(w, "refund sweep failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
