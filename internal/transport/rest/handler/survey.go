package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"callpulse/internal/model"
	"callpulse/internal/service"
	"callpulse/internal/transport/rest/middleware"
)

// SurveyHandler handles template and instance endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// CreateTemplateRequest is the request body for creating a template
type CreateTemplateRequest struct {
	Name       string                       `json:"name"`
	SurveyType string                       `json:"surveyType"`
	TenantID   string                       `json:"tenantId"`
	Languages  []string                     `json:"languages,omitempty"`
	Prompts    map[string]map[string]string `json:"prompts,omitempty"`
	Questions  []model.TemplateQuestion     `json:"questions,omitempty"`
}

// CreateTemplate handles POST /v1/templates
func (h *SurveyHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tpl, err := h.surveySvc.CreateTemplate(r.Context(), service.CreateTemplateInput{
		Name:       req.Name,
		SurveyType: req.SurveyType,
		TenantID:   req.TenantID,
		CreatedBy:  middleware.GetAdminID(r.Context()),
		Languages:  req.Languages,
		Prompts:    req.Prompts,
		Questions:  req.Questions,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tpl)
}

// GetTemplate handles GET /v1/templates/{templateId}
func (h *SurveyHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.surveySvc.GetTemplate(r.Context(), mux.Vars(r)["templateId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// ListTemplates handles GET /v1/templates?tenantId=...
func (h *SurveyHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		tenantID = middleware.GetTenantID(r.Context())
	}

	templates, err := h.surveySvc.ListTemplates(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

// UpdateTemplateRequest is the request body for updating a template
type UpdateTemplateRequest struct {
	Name      string                       `json:"name,omitempty"`
	Languages []string                     `json:"languages,omitempty"`
	Prompts   map[string]map[string]string `json:"prompts,omitempty"`
	Questions []model.TemplateQuestion     `json:"questions,omitempty"`
}

// UpdateTemplate handles PUT /v1/templates/{templateId}
func (h *SurveyHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tpl, err := h.surveySvc.UpdateTemplate(r.Context(), mux.Vars(r)["templateId"], service.UpdateTemplateInput{
		Name:      req.Name,
		Languages: req.Languages,
		Prompts:   req.Prompts,
		Questions: req.Questions,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// DeactivateTemplate handles DELETE /v1/templates/{templateId}
func (h *SurveyHandler) DeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.surveySvc.DeactivateTemplate(r.Context(), mux.Vars(r)["templateId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// CreateInstanceRequest is the request body for deploying an instance
type CreateInstanceRequest struct {
	TemplateID         string     `json:"templateId"`
	TenantID           string     `json:"tenantId,omitempty"`
	Name               string     `json:"name"`
	TriggerMode        string     `json:"triggerMode,omitempty"`
	TargetQueues       []string   `json:"targetQueues,omitempty"`
	TargetAgents       []string   `json:"targetAgents,omitempty"`
	SamplingPercentage float64    `json:"samplingPercentage"`
	CooldownHours      *int       `json:"cooldownHours,omitempty"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
}

// CreateInstance handles POST /v1/instances
func (h *SurveyHandler) CreateInstance(w http.ResponseWriter, r *http.Request) {
	var req CreateInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inst, err := h.surveySvc.CreateInstance(r.Context(), service.CreateInstanceInput{
		TemplateID:         req.TemplateID,
		TenantID:           req.TenantID,
		Name:               req.Name,
		TriggerMode:        req.TriggerMode,
		TargetQueues:       req.TargetQueues,
		TargetAgents:       req.TargetAgents,
		SamplingPercentage: req.SamplingPercentage,
		CooldownHours:      req.CooldownHours,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, inst)
}

// GetInstance handles GET /v1/instances/{instanceId}
func (h *SurveyHandler) GetInstance(w http.ResponseWriter, r *http.Request) {
	inst, err := h.surveySvc.GetInstance(r.Context(), mux.Vars(r)["instanceId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

// UpdateInstanceRequest is the request body for updating an instance
type UpdateInstanceRequest struct {
	Name               string     `json:"name,omitempty"`
	TriggerMode        string     `json:"triggerMode,omitempty"`
	TargetQueues       []string   `json:"targetQueues,omitempty"`
	TargetAgents       []string   `json:"targetAgents,omitempty"`
	SamplingPercentage *float64   `json:"samplingPercentage,omitempty"`
	CooldownHours      *int       `json:"cooldownHours,omitempty"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
}

// UpdateInstance handles PUT /v1/instances/{instanceId}
func (h *SurveyHandler) UpdateInstance(w http.ResponseWriter, r *http.Request) {
	var req UpdateInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inst, err := h.surveySvc.UpdateInstance(r.Context(), mux.Vars(r)["instanceId"], service.UpdateInstanceInput{
		Name:               req.Name,
		TriggerMode:        req.TriggerMode,
		TargetQueues:       req.TargetQueues,
		TargetAgents:       req.TargetAgents,
		SamplingPercentage: req.SamplingPercentage,
		CooldownHours:      req.CooldownHours,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

// ListInstances handles GET /v1/instances?tenantId=...
func (h *SurveyHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		tenantID = middleware.GetTenantID(r.Context())
	}

	instances, err := h.surveySvc.ListActiveInstances(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"instances": instances})
}

// DeactivateInstance handles DELETE /v1/instances/{instanceId}
func (h *SurveyHandler) DeactivateInstance(w http.ResponseWriter, r *http.Request) {
	if err := h.surveySvc.DeactivateInstance(r.Context(), mux.Vars(r)["instanceId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
