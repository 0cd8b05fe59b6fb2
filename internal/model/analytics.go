package model

import "time"

// BreakdownEntry aggregates responses sharing one key (queue or agent).
type BreakdownEntry struct {
	Count     int     `json:"count" bson:"count"`
	MeanScore float64 `json:"meanScore" bson:"meanScore"`
}

// SurveyAnalytics is the aggregate report for one instance and period.
// Recomputed from stored responses on demand, never maintained
// incrementally.
type SurveyAnalytics struct {
	InstanceID  string    `json:"instanceId" bson:"instanceId"`
	TenantID    string    `json:"tenantId,omitempty" bson:"tenantId,omitempty"`
	PeriodStart time.Time `json:"periodStart" bson:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd" bson:"periodEnd"`

	TotalResponses int     `json:"totalResponses" bson:"totalResponses"`
	CompletionRate float64 `json:"completionRate" bson:"completionRate"`
	AverageScore   float64 `json:"averageScore" bson:"averageScore"`

	NPSScore  float64 `json:"npsScore" bson:"npsScore"`
	CSATScore float64 `json:"csatScore" bson:"csatScore"`
	CESScore  float64 `json:"cesScore" bson:"cesScore"`

	PromoterCount  int `json:"promoterCount" bson:"promoterCount"`
	PassiveCount   int `json:"passiveCount" bson:"passiveCount"`
	DetractorCount int `json:"detractorCount" bson:"detractorCount"`

	QueueBreakdown map[string]BreakdownEntry `json:"queueBreakdown" bson:"queueBreakdown"`
	AgentBreakdown map[string]BreakdownEntry `json:"agentBreakdown" bson:"agentBreakdown"`

	SentimentCounts map[string]int `json:"sentimentCounts" bson:"sentimentCounts"` // label -> count

	GeneratedAt time.Time `json:"generatedAt" bson:"generatedAt"`
}

// OfferDecision is the combined offer verdict for a completed call.
type OfferDecision struct {
	Offer    bool   `json:"offer"`
	Sampled  bool   `json:"sampled"`
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}
