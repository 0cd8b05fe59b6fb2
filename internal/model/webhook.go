package model

import "time"

// Webhook event types sent to external systems.
const (
	WebhookEventResponseCompleted = "survey.response.completed"
	WebhookEventAlert             = "survey.alert"
	WebhookEventTest              = "survey.test"
)

// WebhookEvent records one delivery attempt to an external webhook.
type WebhookEvent struct {
	ID         string                 `json:"id" bson:"_id,omitempty"`
	EventType  string                 `json:"eventType" bson:"eventType"`
	Payload    map[string]interface{} `json:"payload" bson:"payload"`
	WebhookURL string                 `json:"webhookUrl" bson:"webhookUrl"`

	Status       string `json:"status" bson:"status"` // "pending", "delivered", "failed"
	ResponseCode int    `json:"responseCode,omitempty" bson:"responseCode,omitempty"`
	ResponseBody string `json:"responseBody,omitempty" bson:"responseBody,omitempty"`
	RetryCount   int    `json:"retryCount" bson:"retryCount"`

	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
}
