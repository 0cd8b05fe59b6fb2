package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"callpulse/internal/service"
)

// AnalyticsHandler handles reporting endpoints
type AnalyticsHandler struct {
	analyticsSvc *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsSvc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Report handles GET /v1/instances/{instanceId}/analytics?from=...&to=...
// Timestamps are RFC 3339; the default window is the trailing 30 days.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	instanceID := mux.Vars(r)["instanceId"]

	now := time.Now().UTC()
	periodStart := now.AddDate(0, 0, -30)
	periodEnd := now

	if from := r.URL.Query().Get("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'from' timestamp, want RFC 3339")
			return
		}
		periodStart = parsed
	}
	if to := r.URL.Query().Get("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'to' timestamp, want RFC 3339")
			return
		}
		periodEnd = parsed
	}
	if !periodStart.Before(periodEnd) {
		writeError(w, http.StatusBadRequest, "'from' must be before 'to'")
		return
	}

	report, err := h.analyticsSvc.Report(r.Context(), instanceID, periodStart, periodEnd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
