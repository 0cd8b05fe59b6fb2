package model

import (
	"fmt"
	"time"
)

// SurveyType is the scoring scale a survey uses.
type SurveyType string

const (
	SurveyTypeCSAT   SurveyType = "csat"   // 1-5 scale
	SurveyTypeNPS    SurveyType = "nps"    // 0-10 scale
	SurveyTypeCES    SurveyType = "ces"    // customer effort score
	SurveyTypeYesNo  SurveyType = "yes_no" // binary compliance
	SurveyTypeCustom SurveyType = "custom"
)

// ParseSurveyType validates a survey type string at the API boundary.
func ParseSurveyType(s string) (SurveyType, error) {
	switch SurveyType(s) {
	case SurveyTypeCSAT, SurveyTypeNPS, SurveyTypeCES, SurveyTypeYesNo, SurveyTypeCustom:
		return SurveyType(s), nil
	}
	return "", fmt.Errorf("unknown survey type %q", s)
}

// TriggerMode is how a survey instance reaches the caller.
type TriggerMode string

const (
	TriggerPostCallIVR      TriggerMode = "post_call_ivr"
	TriggerInQueueIntercept TriggerMode = "in_queue_intercept"
	TriggerOutOfBandSMS     TriggerMode = "out_of_band_sms"
	TriggerOutOfBandEmail   TriggerMode = "out_of_band_email"
)

// ParseTriggerMode validates a trigger mode string at the API boundary.
func ParseTriggerMode(s string) (TriggerMode, error) {
	switch TriggerMode(s) {
	case TriggerPostCallIVR, TriggerInQueueIntercept, TriggerOutOfBandSMS, TriggerOutOfBandEmail:
		return TriggerMode(s), nil
	}
	return "", fmt.Errorf("unknown trigger mode %q", s)
}

// Language is a supported prompt language tag.
type Language string

const (
	LangEN Language = "en"
	LangES Language = "es"
	LangFR Language = "fr"
	LangDE Language = "de"
	LangIT Language = "it"
	LangPT Language = "pt"
)

// ParseLanguage validates a language tag at the API boundary.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LangEN, LangES, LangFR, LangDE, LangIT, LangPT:
		return Language(s), nil
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// SurveyTemplate is the reusable survey definition owned by a tenant.
type SurveyTemplate struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	Name       string     `json:"name" bson:"name"`
	SurveyType SurveyType `json:"surveyType" bson:"surveyType"`
	TenantID   string     `json:"tenantId" bson:"tenantId"`
	CreatedBy  string     `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	Version    int        `json:"version" bson:"version"`
	IsActive   bool       `json:"isActive" bson:"isActive"`

	Languages []Language                     `json:"languages" bson:"languages"`
	Prompts   map[Language]map[string]string `json:"prompts,omitempty" bson:"prompts,omitempty"` // language -> step -> prompt
	Questions []TemplateQuestion             `json:"questions,omitempty" bson:"questions,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TemplateQuestion is a single question in a template.
type TemplateQuestion struct {
	Key    string `json:"key" bson:"key"`
	Type   string `json:"type" bson:"type"` // "scale", "text", "boolean"
	Prompt string `json:"prompt" bson:"prompt"`
	// For scale questions
	ScaleMin int `json:"scaleMin,omitempty" bson:"scaleMin,omitempty"`
	ScaleMax int `json:"scaleMax,omitempty" bson:"scaleMax,omitempty"`
}

// SurveyInstance is a deployed survey: a template bound to targeting,
// sampling and scheduling rules. SurveyType is denormalized from the
// template at creation so evaluation never needs a template lookup.
type SurveyInstance struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	TemplateID string     `json:"templateId" bson:"templateId"`
	TenantID   string     `json:"tenantId" bson:"tenantId"`
	Name       string     `json:"name" bson:"name"`
	SurveyType SurveyType `json:"surveyType" bson:"surveyType"`

	TriggerMode  TriggerMode `json:"triggerMode" bson:"triggerMode"`
	TargetQueues []string    `json:"targetQueues,omitempty" bson:"targetQueues,omitempty"`
	TargetAgents []string    `json:"targetAgents,omitempty" bson:"targetAgents,omitempty"`

	SamplingPercentage float64 `json:"samplingPercentage" bson:"samplingPercentage"` // 0-100
	CooldownHours      *int    `json:"cooldownHours,omitempty" bson:"cooldownHours,omitempty"` // nil = tenant default, 0 = no cooldown

	StartDate time.Time  `json:"startDate" bson:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"` // nil = unbounded
	IsActive  bool       `json:"isActive" bson:"isActive"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// InWindow reports whether the instance is running at the given time.
func (i *SurveyInstance) InWindow(now time.Time) bool {
	if !i.IsActive {
		return false
	}
	if now.Before(i.StartDate) {
		return false
	}
	if i.EndDate != nil && !now.Before(*i.EndDate) {
		return false
	}
	return true
}

// TargetsQueue reports whether the instance applies to the given queue.
// An empty target set matches every queue.
func (i *SurveyInstance) TargetsQueue(queue string) bool {
	if len(i.TargetQueues) == 0 {
		return true
	}
	for _, q := range i.TargetQueues {
		if q == queue {
			return true
		}
	}
	return false
}

// TargetsAgent reports whether the instance applies to the given agent.
// An empty target set matches every agent.
func (i *SurveyInstance) TargetsAgent(agent string) bool {
	if len(i.TargetAgents) == 0 {
		return true
	}
	for _, a := range i.TargetAgents {
		if a == agent {
			return true
		}
	}
	return false
}
