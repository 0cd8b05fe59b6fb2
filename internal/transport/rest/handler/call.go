package handler

import (
	"encoding/json"
	"net/http"

	"callpulse/internal/service"
)

// CallHandler handles the per-call operations: offer evaluation and the
// IVR transfer that follows an accepted offer.
type CallHandler struct {
	offerSvc    *service.OfferService
	transferCli *service.TransferClient
}

// NewCallHandler creates a new call handler
func NewCallHandler(offerSvc *service.OfferService, transferCli *service.TransferClient) *CallHandler {
	return &CallHandler{
		offerSvc:    offerSvc,
		transferCli: transferCli,
	}
}

// OfferRequest is the request body for evaluating a survey offer
type OfferRequest struct {
	InstanceID string `json:"instanceId"`
	CallerID   string `json:"callerId"`
	TenantID   string `json:"tenantId"`
	QueueName  string `json:"queueName,omitempty"`
	AgentID    string `json:"agentId,omitempty"`
}

// EvaluateOffer handles POST /v1/calls/offer
func (h *CallHandler) EvaluateOffer(w http.ResponseWriter, r *http.Request) {
	var req OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := h.offerSvc.EvaluateOffer(r.Context(), service.OfferRequest{
		InstanceID: req.InstanceID,
		CallerID:   req.CallerID,
		TenantID:   req.TenantID,
		QueueName:  req.QueueName,
		AgentID:    req.AgentID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// TransferRequest is the request body for a survey IVR transfer
type TransferRequest struct {
	CallID  string `json:"callId"`
	Context string `json:"context,omitempty"`
	Exten   string `json:"exten,omitempty"`
	Timeout int    `json:"timeout,omitempty"`
}

// Transfer handles POST /v1/calls/transfer. The caller's wazo token is
// forwarded to calld as-is.
func (h *CallHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.transferCli.TransferToSurvey(r.Context(), r.Header.Get("X-Auth-Token"), service.TransferRequest{
		CallID:  req.CallID,
		Context: req.Context,
		Exten:   req.Exten,
		Timeout: req.Timeout,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
