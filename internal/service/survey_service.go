package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"callpulse/internal/model"
	"callpulse/internal/repository"
)

// SurveyService manages survey templates and deployed instances. Enum
// strings are validated here, at the boundary, so no partially valid
// entity ever reaches a repository.
type SurveyService struct {
	templateRepo repository.TemplateRepo
	instanceRepo repository.InstanceRepo
}

func NewSurveyService(templateRepo repository.TemplateRepo, instanceRepo repository.InstanceRepo) *SurveyService {
	return &SurveyService{
		templateRepo: templateRepo,
		instanceRepo: instanceRepo,
	}
}

// CreateTemplateInput carries raw template fields from the API layer.
type CreateTemplateInput struct {
	Name       string
	SurveyType string
	TenantID   string
	CreatedBy  string
	Languages  []string
	Prompts    map[string]map[string]string
	Questions  []model.TemplateQuestion
}

func (s *SurveyService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*model.SurveyTemplate, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrInvalidInput)
	}
	if input.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}

	surveyType, err := model.ParseSurveyType(input.SurveyType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	languages := []model.Language{model.LangEN}
	if len(input.Languages) > 0 {
		languages = languages[:0]
		for _, raw := range input.Languages {
			lang, err := model.ParseLanguage(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			languages = append(languages, lang)
		}
	}

	prompts := make(map[model.Language]map[string]string, len(input.Prompts))
	for raw, steps := range input.Prompts {
		lang, err := model.ParseLanguage(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		prompts[lang] = steps
	}

	tpl := &model.SurveyTemplate{
		ID:         uuid.New().String(),
		Name:       input.Name,
		SurveyType: surveyType,
		TenantID:   input.TenantID,
		CreatedBy:  input.CreatedBy,
		IsActive:   true,
		Languages:  languages,
		Prompts:    prompts,
		Questions:  input.Questions,
	}

	if _, err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *SurveyService) GetTemplate(ctx context.Context, id string) (*model.SurveyTemplate, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: template id is required", ErrInvalidInput)
	}
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
	}
	return tpl, nil
}

func (s *SurveyService) ListTemplates(ctx context.Context, tenantID string) ([]*model.SurveyTemplate, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	return s.templateRepo.ListByTenant(ctx, tenantID)
}

// UpdateTemplateInput carries the mutable template fields. Nil slices
// and maps leave the stored value untouched.
type UpdateTemplateInput struct {
	Name      string
	Languages []string
	Prompts   map[string]map[string]string
	Questions []model.TemplateQuestion
}

// UpdateTemplate applies a partial update and bumps the version.
func (s *SurveyService) UpdateTemplate(ctx context.Context, id string, input UpdateTemplateInput) (*model.SurveyTemplate, error) {
	tpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		tpl.Name = input.Name
	}
	if input.Languages != nil {
		languages := make([]model.Language, 0, len(input.Languages))
		for _, raw := range input.Languages {
			lang, err := model.ParseLanguage(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			languages = append(languages, lang)
		}
		tpl.Languages = languages
	}
	if input.Prompts != nil {
		prompts := make(map[model.Language]map[string]string, len(input.Prompts))
		for raw, steps := range input.Prompts {
			lang, err := model.ParseLanguage(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			prompts[lang] = steps
		}
		tpl.Prompts = prompts
	}
	if input.Questions != nil {
		tpl.Questions = input.Questions
	}

	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	tpl.Version++
	return tpl, nil
}

// CreateInstanceInput carries raw instance fields from the API layer.
type CreateInstanceInput struct {
	TemplateID         string
	TenantID           string
	Name               string
	TriggerMode        string
	TargetQueues       []string
	TargetAgents       []string
	SamplingPercentage float64
	CooldownHours      *int // nil = tenant default
	StartDate          *time.Time
	EndDate            *time.Time
}

func (s *SurveyService) CreateInstance(ctx context.Context, input CreateInstanceInput) (*model.SurveyInstance, error) {
	if input.TemplateID == "" {
		return nil, fmt.Errorf("%w: template id is required", ErrInvalidInput)
	}
	if input.SamplingPercentage < 0 || input.SamplingPercentage > 100 {
		return nil, fmt.Errorf("%w: sampling percentage must be within [0,100]", ErrInvalidInput)
	}
	if input.CooldownHours != nil && *input.CooldownHours < 0 {
		return nil, fmt.Errorf("%w: cooldown hours must be non-negative", ErrInvalidInput)
	}

	triggerMode := model.TriggerPostCallIVR
	if input.TriggerMode != "" {
		parsed, err := model.ParseTriggerMode(input.TriggerMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		triggerMode = parsed
	}

	tpl, err := s.templateRepo.GetByID(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, input.TemplateID)
	}

	inst := &model.SurveyInstance{
		ID:                 uuid.New().String(),
		TemplateID:         tpl.ID,
		TenantID:           input.TenantID,
		Name:               input.Name,
		SurveyType:         tpl.SurveyType,
		TriggerMode:        triggerMode,
		TargetQueues:       input.TargetQueues,
		TargetAgents:       input.TargetAgents,
		SamplingPercentage: input.SamplingPercentage,
		CooldownHours:      input.CooldownHours,
		IsActive:           true,
	}
	if inst.TenantID == "" {
		inst.TenantID = tpl.TenantID
	}
	if input.StartDate != nil {
		inst.StartDate = *input.StartDate
	}
	inst.EndDate = input.EndDate

	if _, err := s.instanceRepo.Create(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *SurveyService) GetInstance(ctx context.Context, id string) (*model.SurveyInstance, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: instance id is required", ErrInvalidInput)
	}
	inst, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("%w: instance %s", ErrNotFound, id)
	}
	return inst, nil
}

// UpdateInstanceInput carries the mutable instance fields. Pointer
// fields distinguish "leave alone" from "set to zero".
type UpdateInstanceInput struct {
	Name               string
	TriggerMode        string
	TargetQueues       []string
	TargetAgents       []string
	SamplingPercentage *float64
	CooldownHours      *int
	StartDate          *time.Time
	EndDate            *time.Time
}

// UpdateInstance applies a partial update to a deployed instance.
func (s *SurveyService) UpdateInstance(ctx context.Context, id string, input UpdateInstanceInput) (*model.SurveyInstance, error) {
	inst, err := s.GetInstance(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		inst.Name = input.Name
	}
	if input.TriggerMode != "" {
		parsed, err := model.ParseTriggerMode(input.TriggerMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		inst.TriggerMode = parsed
	}
	if input.TargetQueues != nil {
		inst.TargetQueues = input.TargetQueues
	}
	if input.TargetAgents != nil {
		inst.TargetAgents = input.TargetAgents
	}
	if input.SamplingPercentage != nil {
		if *input.SamplingPercentage < 0 || *input.SamplingPercentage > 100 {
			return nil, fmt.Errorf("%w: sampling percentage must be within [0,100]", ErrInvalidInput)
		}
		inst.SamplingPercentage = *input.SamplingPercentage
	}
	if input.CooldownHours != nil {
		if *input.CooldownHours < 0 {
			return nil, fmt.Errorf("%w: cooldown hours must be non-negative", ErrInvalidInput)
		}
		inst.CooldownHours = input.CooldownHours
	}
	if input.StartDate != nil {
		inst.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		inst.EndDate = input.EndDate
	}

	if err := s.instanceRepo.Update(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *SurveyService) ListActiveInstances(ctx context.Context, tenantID string) ([]*model.SurveyInstance, error) {
	return s.instanceRepo.ListActive(ctx, tenantID)
}

func (s *SurveyService) DeactivateInstance(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: instance id is required", ErrInvalidInput)
	}
	return s.instanceRepo.Deactivate(ctx, id)
}

func (s *SurveyService) DeactivateTemplate(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: template id is required", ErrInvalidInput)
	}
	return s.templateRepo.Deactivate(ctx, id)
}
