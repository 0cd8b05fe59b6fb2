package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"callpulse/internal/service"
)

// ResponseHandler handles survey response endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc}
}

// SubmitRequest is the request body for submitting a response
type SubmitRequest struct {
	InstanceID        string                 `json:"instanceId"`
	CallID            string                 `json:"callId,omitempty"`
	CallerID          string                 `json:"callerId,omitempty"`
	QueueName         string                 `json:"queueName,omitempty"`
	AgentID           string                 `json:"agentId,omitempty"`
	TenantID          string                 `json:"tenantId,omitempty"`
	Language          string                 `json:"language,omitempty"`
	Answers           map[string]interface{} `json:"answers"`
	TextComments      string                 `json:"textComments,omitempty"`
	Status            string                 `json:"status,omitempty"`
	CompletionSeconds int                    `json:"completionSeconds,omitempty"`
}

// Submit handles POST /v1/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.responseSvc.Submit(r.Context(), service.SubmitInput{
		InstanceID:        req.InstanceID,
		CallID:            req.CallID,
		CallerID:          req.CallerID,
		QueueName:         req.QueueName,
		AgentID:           req.AgentID,
		TenantID:          req.TenantID,
		Language:          req.Language,
		Answers:           req.Answers,
		TextComments:      req.TextComments,
		Status:            req.Status,
		CompletionSeconds: req.CompletionSeconds,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Get handles GET /v1/responses/{responseId}
func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.responseSvc.GetResponse(r.Context(), mux.Vars(r)["responseId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SaveDraftRequest is the request body for updating a pending response
type SaveDraftRequest struct {
	Answers      map[string]interface{} `json:"answers"`
	TextComments string                 `json:"textComments,omitempty"`
}

// SaveDraft handles PUT /v1/responses/{responseId}/answers
func (h *ResponseHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var req SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := mux.Vars(r)["responseId"]
	if err := h.responseSvc.SaveDraft(r.Context(), id, req.Answers, req.TextComments); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// FinalizeRequest is the request body for finalizing a pending response
type FinalizeRequest struct {
	Status            string `json:"status"`
	CompletionSeconds int    `json:"completionSeconds,omitempty"`
}

// Finalize handles POST /v1/responses/{responseId}/finalize
func (h *ResponseHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := mux.Vars(r)["responseId"]
	result, err := h.responseSvc.Finalize(r.Context(), id, req.Status, req.CompletionSeconds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
