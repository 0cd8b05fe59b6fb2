package service

import (
	"fmt"
	"strings"

	"callpulse/internal/model"
)

// Score thresholds for detractor alerts.
const (
	npsDetractorMax  = 6
	csatDetractorMax = 2
)

// defaultComplaintKeywords flag comments that warrant supervisor review.
var defaultComplaintKeywords = []string{
	"terrible", "awful", "horrible", "worst", "hate", "angry", "frustrated",
}

// AlertService evaluates submitted responses against the alert rules.
// Evaluation is pure: dispatching the produced events to supervisors or
// webhooks is the caller's job.
type AlertService struct {
	keywords []string
}

// NewAlertService creates the rule engine. Extra complaint keywords are
// appended to the built-in list.
func NewAlertService(extraKeywords []string) *AlertService {
	keywords := make([]string, 0, len(defaultComplaintKeywords)+len(extraKeywords))
	keywords = append(keywords, defaultComplaintKeywords...)
	for _, kw := range extraKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return &AlertService{keywords: keywords}
}

// Evaluate runs every rule against the response and returns the triggered
// alerts, score rules first so the order is stable. The NPS and CSAT
// thresholds overlap on purpose: a score of 2 or lower fires both.
func (s *AlertService) Evaluate(resp *model.SurveyResponse) []model.AlertEvent {
	if resp == nil {
		return nil
	}
	return s.EvaluateClassified(resp, Classify(resp))
}

// EvaluateClassified is Evaluate for callers that already classified the
// response and want to avoid doing it twice.
func (s *AlertService) EvaluateClassified(resp *model.SurveyResponse, c ClassificationResult) []model.AlertEvent {
	var alerts []model.AlertEvent

	if c.HasScore {
		if c.Score <= npsDetractorMax {
			alerts = append(alerts, s.event(resp, model.AlertNPSDetractor, model.SeverityHigh,
				fmt.Sprintf("Low NPS score detected: %g", c.Score)))
		}
		if c.Score <= csatDetractorMax {
			alerts = append(alerts, s.event(resp, model.AlertCSATDetractor, model.SeverityHigh,
				fmt.Sprintf("Low CSAT score detected: %g", c.Score)))
		}
	}

	if c.Comment != "" {
		for _, keyword := range s.keywords {
			if strings.Contains(c.Comment, keyword) {
				alerts = append(alerts, s.event(resp, model.AlertComplaintDetected, model.SeverityMedium,
					"Complaint keywords detected in comments"))
				break
			}
		}
	}

	return alerts
}

func (s *AlertService) event(resp *model.SurveyResponse, alertType string, severity model.AlertSeverity, message string) model.AlertEvent {
	return model.AlertEvent{
		Type:       alertType,
		Severity:   severity,
		Message:    message,
		ResponseID: resp.ID,
		CallerID:   resp.CallerID,
		AgentID:    resp.AgentID,
		TenantID:   resp.TenantID,
	}
}
