package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"callpulse/internal/model"
	"callpulse/internal/service"
)

// WebhookHandler handles webhook test and verification endpoints
type WebhookHandler struct {
	webhookSvc    *service.WebhookService
	webhookSecret string
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookSvc *service.WebhookService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		webhookSvc:    webhookSvc,
		webhookSecret: webhookSecret,
	}
}

// Test handles POST /v1/webhooks/test: dispatches a signed test event to
// the configured webhook so integrators can verify their receiver.
func (h *WebhookHandler) Test(w http.ResponseWriter, r *http.Request) {
	if !h.webhookSvc.Enabled() {
		writeError(w, http.StatusBadRequest, "no webhook url configured")
		return
	}

	payload := map[string]interface{}{
		"test":    true,
		"message": "webhook connectivity test",
	}
	if err := h.webhookSvc.Dispatch(r.Context(), model.WebhookEventTest, payload); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered"})
}

// Verify handles POST /v1/webhooks/verify: checks a payload against its
// signature header the same way a receiver should.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	signature := r.Header.Get(service.SignatureHeader)
	valid := service.VerifySignature(body, signature, h.webhookSecret)
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// Sign handles POST /v1/webhooks/sign: returns the signature the engine
// would attach to the given payload. Useful while building a receiver.
func (h *WebhookHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	signature, err := service.SignPayload(payload, h.webhookSecret)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"signature": signature})
}
