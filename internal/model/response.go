package model

import (
	"fmt"
	"time"
)

// ResponseStatus is the lifecycle state of a survey response.
type ResponseStatus string

const (
	StatusPending   ResponseStatus = "pending"
	StatusCompleted ResponseStatus = "completed"
	StatusAbandoned ResponseStatus = "abandoned"
	StatusFailed    ResponseStatus = "failed"
)

// ParseResponseStatus validates a status string at the API boundary.
func ParseResponseStatus(s string) (ResponseStatus, error) {
	switch ResponseStatus(s) {
	case StatusPending, StatusCompleted, StatusAbandoned, StatusFailed:
		return ResponseStatus(s), nil
	}
	return "", fmt.Errorf("unknown response status %q", s)
}

// IsTerminal reports whether the status allows no further mutation.
func (s ResponseStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAbandoned || s == StatusFailed
}

// SentimentResult is the output of the external sentiment scorer.
// A zero value with label "neutral" is the degraded no-scorer result.
type SentimentResult struct {
	Label      string  `json:"label" bson:"label"` // "positive", "negative", "neutral"
	Score      float64 `json:"score" bson:"score"`
	Confidence float64 `json:"confidence" bson:"confidence"`
}

// NeutralSentiment is returned whenever the scorer is absent or fails.
func NeutralSentiment() SentimentResult {
	return SentimentResult{Label: "neutral"}
}

// SurveyResponse is a single caller's answers for one survey instance.
// Answers values are numeric, text or boolean depending on the question.
type SurveyResponse struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	InstanceID string `json:"instanceId" bson:"instanceId"`
	TenantID   string `json:"tenantId" bson:"tenantId"`
	CallID     string `json:"callId,omitempty" bson:"callId,omitempty"`
	CallerID   string `json:"callerId,omitempty" bson:"callerId,omitempty"` // empty = anonymous
	QueueName  string `json:"queueName,omitempty" bson:"queueName,omitempty"`
	AgentID    string `json:"agentId,omitempty" bson:"agentId,omitempty"`

	Language Language               `json:"language" bson:"language"`
	Answers  map[string]interface{} `json:"answers" bson:"answers"` // question key -> value

	TextComments string           `json:"textComments,omitempty" bson:"textComments,omitempty"`
	Sentiment    *SentimentResult `json:"sentiment,omitempty" bson:"sentiment,omitempty"`

	Status            ResponseStatus `json:"status" bson:"status"`
	CompletionSeconds int            `json:"completionSeconds,omitempty" bson:"completionSeconds,omitempty"`

	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"` // set iff completed
}
