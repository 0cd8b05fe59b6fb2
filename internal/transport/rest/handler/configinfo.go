package handler

import (
	"net/http"

	"callpulse/internal/config"
)

// ConfigHandler exposes the non-secret runtime configuration
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// Get handles GET /v1/config. Secrets are never echoed.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"calldUrl":             h.cfg.CalldURL,
		"surveyContext":        h.cfg.SurveyContext,
		"surveyExten":          h.cfg.SurveyExten,
		"surveyTimeout":        h.cfg.SurveyTimeout,
		"webhookConfigured":    h.cfg.WebhookURL != "",
		"sentimentConfigured":  h.cfg.SentimentAPIURL != "",
		"maxSurveysPerCaller":  h.cfg.MaxSurveysPerCaller,
		"defaultCooldownHours": h.cfg.DefaultCooldownHours,
	})
}
