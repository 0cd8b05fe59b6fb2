package handler

import (
	"encoding/json"
	"net/http"

	"callpulse/internal/service"
)

// EligibilityHandler exposes the caller ledger to admins
type EligibilityHandler struct {
	eligibilitySvc *service.EligibilityService
}

// NewEligibilityHandler creates a new eligibility handler
func NewEligibilityHandler(eligibilitySvc *service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligibilitySvc: eligibilitySvc}
}

// Check handles GET /v1/eligibility?callerId=...&tenantId=...&instanceId=...
func (h *EligibilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eligible, reason, err := h.eligibilitySvc.IsEligible(r.Context(), q.Get("callerId"), q.Get("tenantId"), q.Get("instanceId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"eligible": eligible,
		"reason":   reason,
	})
}

// Ledger handles GET /v1/eligibility/ledger?callerId=...&tenantId=...
func (h *EligibilityHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ledger, err := h.eligibilitySvc.GetLedger(r.Context(), q.Get("callerId"), q.Get("tenantId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ledger == nil {
		writeError(w, http.StatusNotFound, "caller not in ledger")
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// BlacklistRequest is the request body for toggling a caller blacklist
type BlacklistRequest struct {
	CallerID    string `json:"callerId"`
	TenantID    string `json:"tenantId"`
	Blacklisted bool   `json:"blacklisted"`
	Reason      string `json:"reason,omitempty"`
}

// Blacklist handles PUT /v1/eligibility/blacklist
func (h *EligibilityHandler) Blacklist(w http.ResponseWriter, r *http.Request) {
	var req BlacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.eligibilitySvc.Blacklist(r.Context(), req.CallerID, req.TenantID, req.Blacklisted, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"blacklisted": req.Blacklisted})
}
