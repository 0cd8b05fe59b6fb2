package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"callpulse/internal/model"
	"callpulse/internal/repository"
	"callpulse/pkg/logger"
)

// AlertBroadcaster pushes an alert to the supervisors watching a tenant.
// Implemented by the websocket hub.
type AlertBroadcaster interface {
	BroadcastAlert(tenantID string, alert model.AlertEvent)
}

// ResponseService owns the response lifecycle: intake, draft updates and
// finalization, plus the post-completion pipeline (sentiment, ledger,
// alerts, webhook). The ledger is advanced before any alert leaves the
// process so a notification can never precede its bookkeeping.
type ResponseService struct {
	responseRepo repository.ResponseRepo
	instanceRepo repository.InstanceRepo
	eligibility  *EligibilityService
	alerts       *AlertService
	sentiment    *SentimentService
	webhooks     *WebhookService
	analytics    *AnalyticsService
	broadcaster  AlertBroadcaster
	log          logger.Logger
}

func NewResponseService(
	responseRepo repository.ResponseRepo,
	instanceRepo repository.InstanceRepo,
	eligibility *EligibilityService,
	alerts *AlertService,
	sentiment *SentimentService,
	webhooks *WebhookService,
	analytics *AnalyticsService,
	broadcaster AlertBroadcaster,
	log logger.Logger,
) *ResponseService {
	return &ResponseService{
		responseRepo: responseRepo,
		instanceRepo: instanceRepo,
		eligibility:  eligibility,
		alerts:       alerts,
		sentiment:    sentiment,
		webhooks:     webhooks,
		analytics:    analytics,
		broadcaster:  broadcaster,
		log:          log,
	}
}

// SubmitInput carries raw response fields from the IVR or API layer.
// An empty CallerID means the response is anonymous.
type SubmitInput struct {
	InstanceID        string
	CallID            string
	CallerID          string
	QueueName         string
	AgentID           string
	TenantID          string
	Language          string
	Answers           map[string]interface{}
	TextComments      string
	Status            string
	CompletionSeconds int
}

// SubmitResult reports what happened alongside the stored response.
// WebhookError is a soft failure: the response is stored either way.
type SubmitResult struct {
	Response     *model.SurveyResponse `json:"response"`
	Alerts       []model.AlertEvent    `json:"alerts,omitempty"`
	WebhookError string                `json:"webhookError,omitempty"`
}

// Submit stores a new response. A completed submission runs the full
// post-completion pipeline; a pending one waits for SaveDraft/Finalize.
func (s *ResponseService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.InstanceID == "" {
		return nil, fmt.Errorf("%w: instance id is required", ErrInvalidInput)
	}

	inst, err := s.instanceRepo.GetByID(ctx, input.InstanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("%w: instance %s", ErrNotFound, input.InstanceID)
	}

	status := model.StatusCompleted
	if input.Status != "" {
		status, err = model.ParseResponseStatus(input.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	language := DetectLanguageFromCallerID(input.CallerID)
	if input.Language != "" {
		language, err = model.ParseLanguage(input.Language)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	now := time.Now().UTC()
	resp := &model.SurveyResponse{
		ID:                uuid.New().String(),
		InstanceID:        inst.ID,
		TenantID:          input.TenantID,
		CallID:            input.CallID,
		CallerID:          input.CallerID,
		QueueName:         input.QueueName,
		AgentID:           input.AgentID,
		Language:          language,
		Answers:           input.Answers,
		TextComments:      input.TextComments,
		Status:            status,
		CompletionSeconds: input.CompletionSeconds,
		CreatedAt:         now,
	}
	if resp.TenantID == "" {
		resp.TenantID = inst.TenantID
	}
	if status == model.StatusCompleted {
		resp.CompletedAt = &now
	}
	if resp.TextComments != "" {
		sentiment := s.sentiment.Analyze(ctx, resp.TextComments)
		resp.Sentiment = &sentiment
	}

	if _, err := s.responseRepo.Create(ctx, resp); err != nil {
		return nil, err
	}

	result := &SubmitResult{Response: resp}
	if status == model.StatusCompleted {
		s.runCompletionPipeline(ctx, resp, result)
	}
	return result, nil
}

// SaveDraft replaces the answers of a still-pending response.
func (s *ResponseService) SaveDraft(ctx context.Context, id string, answers map[string]interface{}, textComments string) error {
	if id == "" {
		return fmt.Errorf("%w: response id is required", ErrInvalidInput)
	}

	err := s.responseRepo.SaveAnswers(ctx, id, answers, textComments)
	if errors.Is(err, repository.ErrNotPending) {
		return s.notPending(ctx, id)
	}
	return err
}

// Finalize moves a pending response to a terminal status. Completing it
// triggers the post-completion pipeline.
func (s *ResponseService) Finalize(ctx context.Context, id, rawStatus string, completionSeconds int) (*SubmitResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: response id is required", ErrInvalidInput)
	}
	status, err := model.ParseResponseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: status %q is not terminal", ErrInvalidInput, rawStatus)
	}

	var completedAt *time.Time
	if status == model.StatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}

	err = s.responseRepo.Finalize(ctx, id, status, completedAt, completionSeconds)
	if errors.Is(err, repository.ErrNotPending) {
		return nil, s.notPending(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	resp, err := s.responseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: response %s", ErrNotFound, id)
	}

	if resp.TextComments != "" && resp.Sentiment == nil {
		sentiment := s.sentiment.Analyze(ctx, resp.TextComments)
		resp.Sentiment = &sentiment
	}

	result := &SubmitResult{Response: resp}
	if status == model.StatusCompleted {
		s.runCompletionPipeline(ctx, resp, result)
	}
	return result, nil
}

// GetResponse fetches a response by id.
func (s *ResponseService) GetResponse(ctx context.Context, id string) (*model.SurveyResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: response id is required", ErrInvalidInput)
	}
	resp, err := s.responseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: response %s", ErrNotFound, id)
	}
	return resp, nil
}

// notPending distinguishes a missing response from one already finalized.
func (s *ResponseService) notPending(ctx context.Context, id string) error {
	resp, err := s.responseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if resp == nil {
		return fmt.Errorf("%w: response %s", ErrNotFound, id)
	}
	return fmt.Errorf("%w: response %s is already %s", ErrConflictingUpdate, id, resp.Status)
}

// runCompletionPipeline updates the caller ledger, evaluates alert rules
// and notifies supervisors and the webhook. Ledger failures are logged
// but never undo the stored response; webhook failures are reported back
// as soft errors.
func (s *ResponseService) runCompletionPipeline(ctx context.Context, resp *model.SurveyResponse, result *SubmitResult) {
	if resp.CallerID != "" {
		completedAt := time.Now().UTC()
		if resp.CompletedAt != nil {
			completedAt = *resp.CompletedAt
		}
		if err := s.eligibility.RecordCompletion(ctx, resp.CallerID, resp.TenantID, completedAt); err != nil {
			s.log.Error("ledger update failed after completion",
				"responseId", resp.ID, "callerId", resp.CallerID, "error", err)
		}
	}

	if s.analytics != nil {
		s.analytics.Invalidate(ctx, resp.InstanceID)
	}

	classification := Classify(resp)
	triggered := s.alerts.EvaluateClassified(resp, classification)
	result.Alerts = triggered

	for _, alert := range triggered {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastAlert(alert.TenantID, alert)
		}
		if err := s.webhooks.Dispatch(ctx, model.WebhookEventAlert, alertPayload(alert)); err != nil {
			result.WebhookError = err.Error()
		}
	}

	payload := map[string]interface{}{
		"responseId": resp.ID,
		"instanceId": resp.InstanceID,
		"tenantId":   resp.TenantID,
		"callerId":   resp.CallerID,
		"queueName":  resp.QueueName,
		"agentId":    resp.AgentID,
		"answers":    resp.Answers,
		"comments":   resp.TextComments,
		"alertCount": len(triggered),
	}
	if err := s.webhooks.Dispatch(ctx, model.WebhookEventResponseCompleted, payload); err != nil {
		result.WebhookError = err.Error()
	}
}

func alertPayload(alert model.AlertEvent) map[string]interface{} {
	return map[string]interface{}{
		"type":       alert.Type,
		"severity":   string(alert.Severity),
		"message":    alert.Message,
		"responseId": alert.ResponseID,
		"callerId":   alert.CallerID,
		"agentId":    alert.AgentID,
		"tenantId":   alert.TenantID,
	}
}
